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
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/functions"
	"github.com/rulego/tableagg/logger"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle stage of a GroupReducer
type State int

const (
	StateInit State = iota
	StateBinding
	StatePartitioning
	StateReducing
	StateEmitting
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateBinding:
		return "binding"
	case StatePartitioning:
		return "partitioning"
	case StateReducing:
		return "reducing"
	case StateEmitting:
		return "emitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

// Options configures a GroupReducer
type Options struct {
	Config types.Config
	// Evaluator 公式求值器，为空时使用 formula.Default()
	Evaluator formula.Evaluator
	// Logger 为空时使用 logger.GetDefault()
	Logger logger.Logger
}

// GroupReducer computes one output row per distinct group key of a table.
// A reducer runs once; build a new one for every call.
type GroupReducer struct {
	id      string
	table   *types.Table
	groupBy []string
	specs   []spec.AggregationSpec
	opts    Options
	log     logger.Logger
	stats   *StatsCollector

	mu    sync.RWMutex
	state State
}

// NewGroupReducer creates a reducer in the Init state. Nothing is validated
// until Run.
func NewGroupReducer(table *types.Table, groupBy []string, specs []spec.AggregationSpec, opts Options) *GroupReducer {
	log := opts.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	if opts.Evaluator == nil {
		opts.Evaluator = formula.Default()
	}
	return &GroupReducer{
		id:      uuid.NewString(),
		table:   table,
		groupBy: append([]string(nil), groupBy...),
		specs:   append([]spec.AggregationSpec(nil), specs...),
		opts:    opts,
		log:     log,
		stats:   NewStatsCollector(),
		state:   StateInit,
	}
}

// Apply validates the request and aggregates table by groupBy in one call
func Apply(ctx context.Context, table *types.Table, groupBy []string, specs []spec.AggregationSpec, cfg types.Config) (*types.Table, error) {
	return NewGroupReducer(table, groupBy, specs, Options{Config: cfg}).Run(ctx)
}

// ID returns the run id used in log lines
func (r *GroupReducer) ID() string {
	return r.id
}

// State returns the current lifecycle state
func (r *GroupReducer) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Stats returns the counters and phase timings of the run so far
func (r *GroupReducer) Stats() map[string]int64 {
	return r.stats.GetStats()
}

func (r *GroupReducer) transition(to State) {
	r.mu.Lock()
	from := r.state
	r.state = to
	r.mu.Unlock()
	r.log.Debug("reducer %s: %s -> %s", r.id, from, to)
}

// Run executes the reduction. The input table is never modified. On error no
// table is returned and the reducer ends in Failed, or Cancelled when ctx was
// cancelled.
func (r *GroupReducer) Run(ctx context.Context) (*types.Table, error) {
	r.mu.Lock()
	if r.state != StateInit {
		state := r.state
		r.mu.Unlock()
		return nil, types.InvalidArgumentf("reducer %s already ran (state %s)", r.id, state)
	}
	r.state = StateBinding
	r.mu.Unlock()
	r.log.Debug("reducer %s: %s -> %s", r.id, StateInit, StateBinding)

	start := time.Now()
	out, err := r.run(ctx)
	if err != nil {
		if errors.Is(err, types.ErrCancelled) {
			r.transition(StateCancelled)
			r.log.Info("reducer %s cancelled after %v", r.id, time.Since(start))
		} else {
			r.transition(StateFailed)
		}
		return nil, err
	}
	r.transition(StateDone)
	r.log.Info("reducer %s: %d rows into %d groups, %d output columns in %v",
		r.id, r.table.NumRows(), out.NumRows(), out.NumColumns(), time.Since(start))
	return out, nil
}

func (r *GroupReducer) run(ctx context.Context) (*types.Table, error) {
	cfg := r.opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, types.Cancelled(err)
	}

	since := time.Now()
	plan, err := bind(r.table, r.groupBy, r.specs, cfg, r.opts.Evaluator)
	r.stats.record(phaseBind, since)
	if err != nil {
		r.log.Warn("reducer %s: binding failed: %v", r.id, err)
		return nil, err
	}
	r.stats.setInput(r.table.NumRows(), len(plan.outputs))

	workers := cfg.EffectiveWorkers()
	if r.table.NumRows() < cfg.WorkerConfig.ParallelThreshold {
		workers = 1
	}

	r.transition(StatePartitioning)
	since = time.Now()
	groups, err := partition(ctx, plan.groupBy, r.table.NumRows(), workers, cfg.EffectiveChunkSize())
	r.stats.record(phasePartition, since)
	if err != nil {
		return nil, errors.Wrap(err, "partitioning")
	}
	r.stats.setGroups(len(groups), workers)
	r.log.Debug("reducer %s: %d groups on %d workers", r.id, len(groups), workers)

	r.transition(StateReducing)
	since = time.Now()
	results, err := reduce(ctx, plan.outputs, groups, workers, r.stats)
	r.stats.record(phaseReduce, since)
	if err != nil {
		return nil, err
	}

	r.transition(StateEmitting)
	since = time.Now()
	out, err := emit(plan, groups, results)
	r.stats.record(phaseEmit, since)
	return out, err
}

// reduce computes the outputs of every group. Groups are sharded by key hash;
// each worker owns the reduction states of its shard and writes only the
// result rows of its own groups.
func reduce(ctx context.Context, outputs []*boundOutput, groups []*group, workers int, stats *StatsCollector) ([][]types.Value, error) {
	results := make([][]types.Value, len(groups))
	if workers > len(groups) {
		workers = len(groups)
	}
	if workers <= 1 {
		for _, g := range groups {
			if err := ctx.Err(); err != nil {
				return nil, types.Cancelled(err)
			}
			row, err := reduceGroup(outputs, g)
			if err != nil {
				return nil, err
			}
			results[g.seq] = row
			stats.groupDone(len(g.rows))
		}
		return results, nil
	}

	shards := make([][]*group, workers)
	for _, g := range groups {
		i := shardOf(g.hash, workers)
		shards[i] = append(shards[i], g)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, shard := range shards {
		shard := shard
		eg.Go(func() error {
			for _, g := range shard {
				if err := gctx.Err(); err != nil {
					return types.Cancelled(err)
				}
				row, err := reduceGroup(outputs, g)
				if err != nil {
					return err
				}
				results[g.seq] = row
				stats.groupDone(len(g.rows))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		// 父上下文被取消时统一报告为取消
		if ctx.Err() != nil {
			return nil, types.Cancelled(ctx.Err())
		}
		return nil, err
	}
	return results, nil
}

// reduceGroup feeds the rows of one group, in row order, to a fresh state
// per output column
func reduceGroup(outputs []*boundOutput, g *group) ([]types.Value, error) {
	row := make([]types.Value, len(outputs))
	for i, out := range outputs {
		state := out.proto.New()
		for _, r := range g.rows {
			in, err := out.input(r)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: row %d", out.desc, r)
			}
			if err := state.Add(in); err != nil {
				return nil, errors.Wrapf(err, "%s: row %d", out.desc, r)
			}
		}
		v, err := state.Result()
		if err != nil {
			return nil, errors.Wrapf(err, "%s", out.desc)
		}
		row[i] = v
	}
	return row, nil
}

// input assembles the strategy input of one row
func (out *boundOutput) input(row int) (functions.Input, error) {
	in := functions.Input{Row: row}
	if out.column != nil {
		in.Value = out.column.Value(row)
	}
	if out.weight != nil {
		in.Weight = out.weight.Value(row)
	}
	if out.sortKey != nil {
		in.SortKey = out.sortKey.Value(row)
	}
	if out.filter != nil {
		env := make(map[string]interface{}, len(out.filterCols))
		for _, col := range out.filterCols {
			env[col.Name()] = col.Value(row).Interface()
		}
		matched, err := out.filter.Evaluate(env)
		if err != nil {
			return in, err
		}
		in.Matched = matched
	}
	if len(out.args) > 0 {
		in.Args = make([]types.Value, len(out.args))
		for i, col := range out.args {
			in.Args[i] = col.Value(row)
		}
	}
	return in, nil
}

// emit assembles the result table: group-by columns in grouping order, then
// the outputs in declaration order
func emit(plan *binding, groups []*group, results [][]types.Value) (*types.Table, error) {
	columns := make([]*types.Column, 0, len(plan.groupBy)+len(plan.outputs))
	for j, by := range plan.groupBy {
		values := make([]types.Value, len(groups))
		for i, g := range groups {
			values[i] = g.values[j]
		}
		col, err := types.NewColumn(by.Name(), by.Kind(), values)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	for j, out := range plan.outputs {
		values := make([]types.Value, len(groups))
		for i := range groups {
			values[i] = results[i][j]
		}
		kind := out.outKind
		if out.inferKind {
			kind = inferKind(values)
		}
		col, err := types.NewColumn(out.name, kind, values)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", out.desc)
		}
		columns = append(columns, col)
	}
	return types.NewTable(columns...)
}

// inferKind picks the common kind of the non-null values. Mixed kinds, or
// no value at all, give an object column.
func inferKind(values []types.Value) types.Kind {
	kind, found := types.KindObject, false
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if !found {
			kind, found = v.Kind(), true
			continue
		}
		if v.Kind() != kind {
			return types.KindObject
		}
	}
	return kind
}
