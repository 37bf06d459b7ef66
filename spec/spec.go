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

package spec

import (
	"fmt"
	"strings"

	"github.com/rulego/tableagg/condition"
	"github.com/rulego/tableagg/types"
)

// Params holds the per-kind parameters of a spec. Fields that do not apply to
// a kind are left at their zero value.
type Params struct {
	// count_distinct
	CountNulls bool
	// distinct, unique
	IncludeNulls bool
	// unique
	Sentinel types.Value
	// median, percentile
	Percentile           float64
	AverageEvenlyDivided bool
	// sorted_first, sorted_last
	OrderBy string
	// weighted_avg, weighted_sum
	Weight string
	// count_where
	Filter condition.Filter
	// formula: the expression, without its "out =" part in self-contained mode
	Formula string
	// formula: placeholder bound to each pair's source column, empty in
	// self-contained mode
	Param string
	// partition
	IncludeByColumns bool
}

// AggregationSpec declares one aggregation. It is immutable once built.
type AggregationSpec struct {
	kind   AggregateType
	pairs  []Pair
	params Params
}

func newSpec(kind AggregateType, pairs []Pair, params Params) AggregationSpec {
	return AggregationSpec{kind: kind, pairs: pairs, params: params}
}

func (s AggregationSpec) Kind() AggregateType {
	return s.kind
}

// Pairs returns the output/input column pairs. Structural kinds have a single
// pair with an empty input.
func (s AggregationSpec) Pairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

func (s AggregationSpec) Params() Params {
	return s.params
}

// OutputNames lists the output column names in declaration order
func (s AggregationSpec) OutputNames() []string {
	names := make([]string, len(s.pairs))
	for i, p := range s.pairs {
		names[i] = p.Output
	}
	return names
}

// IsSelfContainedFormula reports a formula of the form "out = expr"
func (s AggregationSpec) IsSelfContainedFormula() bool {
	return s.kind == TypeFormula && s.params.Param == ""
}

// ExcludedColumns lists the auxiliary columns a spec reads besides its pairs.
// They are never fanned out by agg_all_by.
func (s AggregationSpec) ExcludedColumns() []string {
	var cols []string
	if s.params.OrderBy != "" {
		cols = append(cols, s.params.OrderBy)
	}
	if s.params.Weight != "" {
		cols = append(cols, s.params.Weight)
	}
	return cols
}

// WithPairs returns a copy of a column-list spec applied to other columns
func (s AggregationSpec) WithPairs(pairs []Pair) (AggregationSpec, error) {
	if !s.kind.IsColumnList() || s.IsSelfContainedFormula() {
		return AggregationSpec{}, types.InvalidArgumentf("%s does not take a column list", s.kind)
	}
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	return newSpec(s.kind, out, s.params), nil
}

// String describes the spec for errors and logs, e.g. "sum(total = price)"
func (s AggregationSpec) String() string {
	var args []string
	switch s.kind {
	case TypeCountDistinct:
		args = append(args, fmt.Sprintf("count_nulls=%t", s.params.CountNulls))
	case TypeDistinct:
		args = append(args, fmt.Sprintf("include_nulls=%t", s.params.IncludeNulls))
	case TypeUnique:
		args = append(args, fmt.Sprintf("include_nulls=%t", s.params.IncludeNulls))
		if !s.params.Sentinel.IsNull() {
			args = append(args, "sentinel="+s.params.Sentinel.String())
		}
	case TypeMedian:
		args = append(args, fmt.Sprintf("average=%t", s.params.AverageEvenlyDivided))
	case TypePercentile:
		args = append(args, fmt.Sprintf("p=%g", s.params.Percentile), fmt.Sprintf("average=%t", s.params.AverageEvenlyDivided))
	case TypeSortedFirst, TypeSortedLast:
		args = append(args, "order_by="+s.params.OrderBy)
	case TypeWeightedAvg, TypeWeightedSum:
		args = append(args, "weight="+s.params.Weight)
	case TypeCountWhere:
		if s.params.Filter != nil {
			args = append(args, "where="+s.params.Filter.String())
		}
	case TypePartition:
		args = append(args, fmt.Sprintf("include_by=%t", s.params.IncludeByColumns))
	case TypeFormula:
		if s.params.Param != "" {
			args = append(args, fmt.Sprintf("%q", s.params.Formula), "param="+s.params.Param)
		} else {
			args = append(args, fmt.Sprintf("%q", s.params.Formula))
		}
	}
	for _, p := range s.pairs {
		args = append(args, p.String())
	}
	return string(s.kind) + "(" + strings.Join(args, ", ") + ")"
}
