/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package aggregator

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/rulego/tableagg/types"
	"golang.org/x/sync/errgroup"
)

// group is one distinct GroupKey. seq is its first-occurrence rank; rows are
// ascending table row indices.
type group struct {
	seq  int
	key  string
	hash uint64
	// 分组键的各列取值，取自首次出现的行
	values []types.Value
	rows   []int
}

// chunkGroups is the local partition of one row range
type chunkGroups struct {
	order []*group
	byKey map[string]*group
}

func partitionChunk(ctx context.Context, groupBy []*types.Column, start, end int) (*chunkGroups, error) {
	local := &chunkGroups{byKey: make(map[string]*group)}
	values := make([]types.Value, len(groupBy))
	for row := start; row < end; row++ {
		if (row-start)&1023 == 0 && ctx.Err() != nil {
			return nil, types.Cancelled(ctx.Err())
		}
		for i, col := range groupBy {
			values[i] = col.Value(row)
		}
		key := types.EncodeKey(values)
		g, ok := local.byKey[key]
		if !ok {
			g = &group{key: key, values: append([]types.Value(nil), values...)}
			local.byKey[key] = g
			local.order = append(local.order, g)
		}
		g.rows = append(g.rows, row)
	}
	return local, nil
}

// partition splits the rows into groups. Chunks are partitioned concurrently
// and merged in chunk order by the calling goroutine, which assigns sequence
// numbers, so the group order is the first-occurrence order for any number of
// workers.
func partition(ctx context.Context, groupBy []*types.Column, numRows int, workers, chunkSize int) ([]*group, error) {
	if len(groupBy) == 0 {
		// 没有分组列时整张表是一个分组，空表也输出一行
		rows := make([]int, numRows)
		for i := range rows {
			rows[i] = i
		}
		key := types.EncodeKey(nil)
		return []*group{{key: key, hash: xxhash.Sum64String(key), rows: rows}}, nil
	}

	if chunkSize <= 0 || workers <= 1 {
		chunkSize = numRows
	}
	var bounds [][2]int
	for start := 0; start < numRows; start += chunkSize {
		end := start + chunkSize
		if end > numRows {
			end = numRows
		}
		bounds = append(bounds, [2]int{start, end})
	}

	chunks := make([]*chunkGroups, len(bounds))
	if len(bounds) == 1 {
		local, err := partitionChunk(ctx, groupBy, bounds[0][0], bounds[0][1])
		if err != nil {
			return nil, err
		}
		chunks[0] = local
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, b := range bounds {
			i, b := i, b
			g.Go(func() error {
				local, err := partitionChunk(gctx, groupBy, b[0], b[1])
				if err != nil {
					return err
				}
				chunks[i] = local
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return mergeChunks(chunks), nil
}

func mergeChunks(chunks []*chunkGroups) []*group {
	if len(chunks) == 1 {
		for i, g := range chunks[0].order {
			g.seq, g.hash = i, xxhash.Sum64String(g.key)
		}
		return chunks[0].order
	}
	index := make(map[string]*group)
	var groups []*group
	for _, chunk := range chunks {
		for _, local := range chunk.order {
			g, ok := index[local.key]
			if !ok {
				local.seq = len(groups)
				local.hash = xxhash.Sum64String(local.key)
				index[local.key] = local
				groups = append(groups, local)
				continue
			}
			g.rows = append(g.rows, local.rows...)
		}
	}
	return groups
}

// shardOf maps a group hash onto [0, n) by the high 32 bits
func shardOf(hash uint64, n int) int {
	return int(((hash >> 32) * uint64(n)) >> 32)
}
