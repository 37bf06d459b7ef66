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
	"sync/atomic"
	"time"
)

// Statistics field constants
const (
	InputRows      = "input_rows"
	GroupCount     = "group_count"
	GroupsReduced  = "groups_reduced"
	RowsReduced    = "rows_reduced"
	OutputColumns  = "output_columns"
	Workers        = "workers"
	BindNanos      = "bind_nanos"
	PartitionNanos = "partition_nanos"
	ReduceNanos    = "reduce_nanos"
	EmitNanos      = "emit_nanos"
)

// StatsCollector 记录一次归约的计数和各阶段耗时，可被多个工作协程同时更新
type StatsCollector struct {
	inputRows     int64
	groups        int64
	groupsReduced int64
	rowsReduced   int64
	outputs       int64
	workers       int64
	phases        [4]int64
}

type phase int

const (
	phaseBind phase = iota
	phasePartition
	phaseReduce
	phaseEmit
)

// NewStatsCollector creates an empty collector
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

func (sc *StatsCollector) setInput(rows, outputs int) {
	atomic.StoreInt64(&sc.inputRows, int64(rows))
	atomic.StoreInt64(&sc.outputs, int64(outputs))
}

func (sc *StatsCollector) setGroups(groups, workers int) {
	atomic.StoreInt64(&sc.groups, int64(groups))
	atomic.StoreInt64(&sc.workers, int64(workers))
}

// groupDone is called by the worker that reduced a group
func (sc *StatsCollector) groupDone(rows int) {
	atomic.AddInt64(&sc.groupsReduced, 1)
	atomic.AddInt64(&sc.rowsReduced, int64(rows))
}

func (sc *StatsCollector) record(p phase, since time.Time) {
	atomic.StoreInt64(&sc.phases[p], int64(time.Since(since)))
}

// GetGroupsReduced gets the number of groups whose row was computed so far
func (sc *StatsCollector) GetGroupsReduced() int64 {
	return atomic.LoadInt64(&sc.groupsReduced)
}

// GetStats returns a snapshot of every counter. Phases that did not run
// report zero.
func (sc *StatsCollector) GetStats() map[string]int64 {
	return map[string]int64{
		InputRows:      atomic.LoadInt64(&sc.inputRows),
		GroupCount:     atomic.LoadInt64(&sc.groups),
		GroupsReduced:  atomic.LoadInt64(&sc.groupsReduced),
		RowsReduced:    atomic.LoadInt64(&sc.rowsReduced),
		OutputColumns:  atomic.LoadInt64(&sc.outputs),
		Workers:        atomic.LoadInt64(&sc.workers),
		BindNanos:      atomic.LoadInt64(&sc.phases[phaseBind]),
		PartitionNanos: atomic.LoadInt64(&sc.phases[phasePartition]),
		ReduceNanos:    atomic.LoadInt64(&sc.phases[phaseReduce]),
		EmitNanos:      atomic.LoadInt64(&sc.phases[phaseEmit]),
	}
}
