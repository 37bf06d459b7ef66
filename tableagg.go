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

package tableagg

import (
	"context"

	"github.com/rulego/tableagg/aggregator"
	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/logger"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// Engine 是聚合引擎的入口。
// Engine 本身不保存任何运行状态，可以被多个协程同时使用，
// 每次调用都会创建独立的 GroupReducer。
//
// 使用示例:
//
//	engine := tableagg.New(tableagg.WithWorkers(4))
//	out, err := engine.Apply(ctx, table, []string{"sym"},
//		spec.Must(spec.Sum("total = qty")),
//		spec.Must(spec.Median(true, "price")),
//	)
type Engine struct {
	config    types.Config
	evaluator formula.Evaluator
	log       logger.Logger
}

// New 创建聚合引擎。
//
// 示例:
//
//	// 默认配置
//	engine := tableagg.New()
//
//	// 单协程、空分组求和返回 0
//	engine := tableagg.New(tableagg.WithSingleThreaded(), tableagg.WithEmptySumAsZero(true))
func New(options ...Option) *Engine {
	e := &Engine{config: types.NewConfig()}
	for _, option := range options {
		option(e)
	}
	if e.evaluator == nil {
		e.evaluator = formula.Default()
	}
	return e
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() types.Config {
	return e.config
}

func (e *Engine) currentLogger() logger.Logger {
	if e.log != nil {
		return e.log
	}
	return logger.GetDefault()
}

// NewReducer creates a GroupReducer with the engine settings, for callers
// that want to observe its state or run id
func (e *Engine) NewReducer(table *types.Table, groupBy []string, specs ...spec.AggregationSpec) *aggregator.GroupReducer {
	return aggregator.NewGroupReducer(table, groupBy, specs, aggregator.Options{
		Config:    e.config,
		Evaluator: e.evaluator,
		Logger:    e.currentLogger(),
	})
}

// Apply aggregates table by the groupBy columns. The result has one row per
// distinct group key in first-occurrence order: the group-by columns, then one
// column per (spec, column pair) in declaration order. With no groupBy
// columns the whole table is one group. The input table is not modified.
//
// Errors (test with errors.Is): types.ErrSchemaConflict, types.ErrColumnNotFound,
// types.ErrTypeMismatch, types.ErrInvalidArgument, types.ErrOverflow and
// types.ErrCancelled. No partial table is returned.
func (e *Engine) Apply(ctx context.Context, table *types.Table, groupBy []string, specs ...spec.AggregationSpec) (*types.Table, error) {
	return e.NewReducer(table, groupBy, specs...).Run(ctx)
}

// ApplySet is Apply with the specs of an AggregationSet
func (e *Engine) ApplySet(ctx context.Context, table *types.Table, groupBy []string, set *spec.AggregationSet) (*types.Table, error) {
	if set == nil {
		return e.Apply(ctx, table, groupBy)
	}
	return e.Apply(ctx, table, groupBy, set.Specs()...)
}

// AggAllBy applies a column-list spec that names no columns to every column
// except the groupBy columns and the spec's own weight or order-by column.
// Output columns keep their source names.
//
//	out, err := engine.AggAllBy(ctx, table, spec.Must(spec.Max()), "sym")
func (e *Engine) AggAllBy(ctx context.Context, table *types.Table, s spec.AggregationSpec, groupBy ...string) (*types.Table, error) {
	if table == nil {
		return nil, types.InvalidArgumentf("table cannot be nil")
	}
	if !s.Kind().IsColumnList() || s.IsSelfContainedFormula() {
		return nil, types.InvalidArgumentf("agg_all_by does not accept %s", s.Kind()).WithSpec(s.String())
	}
	if len(s.Pairs()) > 0 {
		return nil, types.InvalidArgumentf("agg_all_by spec must not name columns").WithSpec(s.String())
	}

	excluded := make(map[string]struct{})
	for _, name := range groupBy {
		excluded[name] = struct{}{}
	}
	for _, name := range s.ExcludedColumns() {
		excluded[name] = struct{}{}
	}
	var pairs []spec.Pair
	for _, name := range table.ColumnNames() {
		if _, ok := excluded[name]; !ok {
			pairs = append(pairs, spec.Pair{Output: name, Input: name})
		}
	}
	fanned, err := s.WithPairs(pairs)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, table, groupBy, fanned)
}
