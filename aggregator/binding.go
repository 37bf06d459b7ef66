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
	"github.com/rulego/tableagg/condition"
	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/functions"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// boundOutput is one output column: a (spec, pair) whose columns are resolved
// and whose strategy has been checked against the column kinds
type boundOutput struct {
	name   string
	kind   spec.AggregateType
	desc   string
	column *types.Column
	// weight 加权列，sortKey 排序列
	weight  *types.Column
	sortKey *types.Column
	// count_where 的过滤条件及其引用的列
	filter     condition.Filter
	filterCols []*types.Column
	args       []*types.Column
	proto      functions.AggregatorFunction
	outKind    types.Kind
	inferKind  bool
}

// binding is the validated plan of a run
type binding struct {
	groupBy []*types.Column
	outputs []*boundOutput
}

// bind resolves every column reference and checks every strategy before any
// row is read. Name conflicts are reported first, then unknown columns and
// kind mismatches in declaration order.
func bind(table *types.Table, groupBy []string, specs []spec.AggregationSpec, cfg types.Config, evaluator formula.Evaluator) (*binding, error) {
	if table == nil {
		return nil, types.InvalidArgumentf("table cannot be nil")
	}
	if err := checkNames(groupBy, specs); err != nil {
		return nil, err
	}

	b := &binding{}
	for _, name := range groupBy {
		col, ok := table.Column(name)
		if !ok {
			return nil, types.ColumnNotFound(name)
		}
		b.groupBy = append(b.groupBy, col)
	}

	for _, s := range specs {
		outputs, err := bindSpec(table, groupBy, s, cfg, evaluator)
		if err != nil {
			return nil, err
		}
		b.outputs = append(b.outputs, outputs...)
	}
	return b, nil
}

// checkNames rejects duplicate group-by columns, column-less column-list
// specs and output names that collide with each other or with the group-by
// columns
func checkNames(groupBy []string, specs []spec.AggregationSpec) error {
	seen := make(map[string]struct{}, len(groupBy))
	for _, name := range groupBy {
		if _, ok := seen[name]; ok {
			return types.SchemaConflict(name)
		}
		seen[name] = struct{}{}
	}
	for _, s := range specs {
		if s.Kind().IsColumnList() && !s.IsSelfContainedFormula() && len(s.Pairs()) == 0 {
			return types.InvalidArgumentf("no columns specified").WithSpec(s.String())
		}
		for _, name := range s.OutputNames() {
			if _, ok := seen[name]; ok {
				return types.SchemaConflict(name).WithSpec(s.String())
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}

func lookup(table *types.Table, name string, s spec.AggregationSpec) (*types.Column, error) {
	col, ok := table.Column(name)
	if !ok {
		return nil, types.ColumnNotFound(name).WithSpec(s.String())
	}
	return col, nil
}

func bindSpec(table *types.Table, groupBy []string, s spec.AggregationSpec, cfg types.Config, evaluator formula.Evaluator) ([]*boundOutput, error) {
	params := s.Params()
	var weight, sortKey *types.Column
	var err error
	if params.Weight != "" {
		if weight, err = lookup(table, params.Weight, s); err != nil {
			return nil, err
		}
	}
	if params.OrderBy != "" {
		if sortKey, err = lookup(table, params.OrderBy, s); err != nil {
			return nil, err
		}
	}

	var filterCols []*types.Column
	if s.Kind() == spec.TypeCountWhere {
		for _, name := range params.Filter.Columns() {
			col, err := lookup(table, name, s)
			if err != nil {
				return nil, err
			}
			filterCols = append(filterCols, col)
		}
	}

	var outputs []*boundOutput
	for _, pair := range s.Pairs() {
		out := &boundOutput{
			name:       pair.Output,
			kind:       s.Kind(),
			desc:       s.String(),
			weight:     weight,
			sortKey:    sortKey,
			filter:     params.Filter,
			filterCols: filterCols,
		}
		opts := &functions.Options{
			Config: cfg,
			Params: params,
		}
		if weight != nil {
			opts.WeightKind = weight.Kind()
		}
		if sortKey != nil {
			opts.SortKind = sortKey.Kind()
		}

		switch s.Kind() {
		case spec.TypeCount, spec.TypeCountWhere:
		case spec.TypePartition:
			opts.Source = table
			opts.Columns = partitionColumns(table, groupBy, params.IncludeByColumns)
		case spec.TypeFormula:
			if err := bindFormula(table, s, pair, out, opts, evaluator); err != nil {
				return nil, err
			}
		default:
			if out.column, err = lookup(table, pair.Input, s); err != nil {
				return nil, err
			}
			opts.InputKind = out.column.Kind()
		}

		proto, kind, err := functions.Create(s.Kind(), opts)
		if err != nil {
			return nil, annotate(err, pair, s)
		}
		def, _ := functions.Lookup(s.Kind())
		out.proto, out.outKind, out.inferKind = proto, kind, def.InferKind
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// annotate attaches the spec and the input column to a bind error
func annotate(err error, pair spec.Pair, s spec.AggregationSpec) error {
	e, ok := err.(*types.Error)
	if !ok {
		return err
	}
	if e.Column == "" && pair.Input != "" {
		e = e.WithColumn(pair.Input)
	}
	return e.WithSpec(s.String())
}

func partitionColumns(table *types.Table, groupBy []string, includeBy bool) []string {
	if includeBy {
		return table.ColumnNames()
	}
	excluded := make(map[string]struct{}, len(groupBy))
	for _, name := range groupBy {
		excluded[name] = struct{}{}
	}
	var names []string
	for _, name := range table.ColumnNames() {
		if _, ok := excluded[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

// bindFormula binds the columns a formula reads. In "out = expr" form every
// referenced column becomes a variable; with a placeholder the pair's source
// column is bound to the placeholder and any other reference to the column of
// that name. An "out = expr" formula that calls no vector helper is evaluated
// row by row on the row values, any other formula once per group on the
// group vectors.
func bindFormula(table *types.Table, s spec.AggregationSpec, pair spec.Pair, out *boundOutput, opts *functions.Options, evaluator formula.Evaluator) error {
	params := s.Params()
	if evaluator == nil {
		evaluator = formula.Default()
	}
	if c, ok := evaluator.(formula.Compiler); ok {
		if err := c.Compile(params.Formula); err != nil {
			return annotate(err, spec.Pair{}, s)
		}
	}
	refs, err := formula.References(params.Formula)
	if err != nil {
		return annotate(err, spec.Pair{}, s)
	}

	var variables []string
	if !s.IsSelfContainedFormula() {
		src, err := lookup(table, pair.Input, s)
		if err != nil {
			return err
		}
		variables = append(variables, params.Param)
		out.args = append(out.args, src)
	}
	for _, ref := range refs {
		if ref == params.Param {
			continue
		}
		col, err := lookup(table, ref, s)
		if err != nil {
			return err
		}
		variables = append(variables, ref)
		out.args = append(out.args, col)
	}

	if s.IsSelfContainedFormula() {
		grouped, err := formula.CallsHelper(params.Formula)
		if err != nil {
			return annotate(err, spec.Pair{}, s)
		}
		opts.RowWise = !grouped
	}

	opts.Evaluator = evaluator
	opts.Expression = params.Formula
	opts.Variables = variables
	opts.InputKind = types.KindObject
	return nil
}
