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
	"math"
	"strings"

	"github.com/rulego/tableagg/condition"
	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/types"
)

// Must panics if err is not nil
func Must(s AggregationSpec, err error) AggregationSpec {
	if err != nil {
		panic(err)
	}
	return s
}

func columnList(kind AggregateType, params Params, cols []string) (AggregationSpec, error) {
	pairs, err := ParsePairs(cols...)
	if err != nil {
		return AggregationSpec{}, err
	}
	return newSpec(kind, pairs, params), nil
}

func Sum(cols ...string) (AggregationSpec, error) {
	return columnList(TypeSum, Params{}, cols)
}

// AbsSum sums absolute values
func AbsSum(cols ...string) (AggregationSpec, error) {
	return columnList(TypeAbsSum, Params{}, cols)
}

func Avg(cols ...string) (AggregationSpec, error) {
	return columnList(TypeAvg, Params{}, cols)
}

func Min(cols ...string) (AggregationSpec, error) {
	return columnList(TypeMin, Params{}, cols)
}

func Max(cols ...string) (AggregationSpec, error) {
	return columnList(TypeMax, Params{}, cols)
}

// Std is the sample standard deviation
func Std(cols ...string) (AggregationSpec, error) {
	return columnList(TypeStd, Params{}, cols)
}

// Var is the sample variance
func Var(cols ...string) (AggregationSpec, error) {
	return columnList(TypeVar, Params{}, cols)
}

// Group collects every value of the group, in row order, into a vector
func Group(cols ...string) (AggregationSpec, error) {
	return columnList(TypeGroup, Params{}, cols)
}

func First(cols ...string) (AggregationSpec, error) {
	return columnList(TypeFirst, Params{}, cols)
}

func Last(cols ...string) (AggregationSpec, error) {
	return columnList(TypeLast, Params{}, cols)
}

// CountDistinct counts distinct values. Nulls count as one value when
// countNulls is set.
func CountDistinct(countNulls bool, cols ...string) (AggregationSpec, error) {
	return columnList(TypeCountDistinct, Params{CountNulls: countNulls}, cols)
}

// Distinct collects distinct values in first-occurrence order
func Distinct(includeNulls bool, cols ...string) (AggregationSpec, error) {
	return columnList(TypeDistinct, Params{IncludeNulls: includeNulls}, cols)
}

// Unique yields the single distinct value of a group, or the sentinel when
// there are none or several. A sentinel is required once nulls are candidates.
func Unique(includeNulls bool, nonUniqueSentinel types.Value, cols ...string) (AggregationSpec, error) {
	if includeNulls && nonUniqueSentinel.IsNull() {
		return AggregationSpec{}, types.InvalidArgumentf("unique with include_nulls requires a non-null sentinel")
	}
	return columnList(TypeUnique, Params{IncludeNulls: includeNulls, Sentinel: nonUniqueSentinel}, cols)
}

// Median is the 50th percentile
func Median(averageEvenlyDivided bool, cols ...string) (AggregationSpec, error) {
	return columnList(TypeMedian, Params{Percentile: 0.5, AverageEvenlyDivided: averageEvenlyDivided}, cols)
}

// Pct computes a percentile in [0, 1]
func Pct(percentile float64, averageEvenlyDivided bool, cols ...string) (AggregationSpec, error) {
	if math.IsNaN(percentile) || percentile < 0 || percentile > 1 {
		return AggregationSpec{}, types.InvalidArgumentf("percentile must be within [0, 1], got %g", percentile)
	}
	return columnList(TypePercentile, Params{Percentile: percentile, AverageEvenlyDivided: averageEvenlyDivided}, cols)
}

// SortedFirst takes the value of the row with the smallest orderBy value
func SortedFirst(orderBy string, cols ...string) (AggregationSpec, error) {
	if strings.TrimSpace(orderBy) == "" {
		return AggregationSpec{}, types.InvalidArgumentf("sorted_first requires an order-by column")
	}
	return columnList(TypeSortedFirst, Params{OrderBy: strings.TrimSpace(orderBy)}, cols)
}

// SortedLast takes the value of the row with the largest orderBy value
func SortedLast(orderBy string, cols ...string) (AggregationSpec, error) {
	if strings.TrimSpace(orderBy) == "" {
		return AggregationSpec{}, types.InvalidArgumentf("sorted_last requires an order-by column")
	}
	return columnList(TypeSortedLast, Params{OrderBy: strings.TrimSpace(orderBy)}, cols)
}

func WeightedAvg(weightCol string, cols ...string) (AggregationSpec, error) {
	if strings.TrimSpace(weightCol) == "" {
		return AggregationSpec{}, types.InvalidArgumentf("weighted_avg requires a weight column")
	}
	return columnList(TypeWeightedAvg, Params{Weight: strings.TrimSpace(weightCol)}, cols)
}

func WeightedSum(weightCol string, cols ...string) (AggregationSpec, error) {
	if strings.TrimSpace(weightCol) == "" {
		return AggregationSpec{}, types.InvalidArgumentf("weighted_sum requires a weight column")
	}
	return columnList(TypeWeightedSum, Params{Weight: strings.TrimSpace(weightCol)}, cols)
}

func outputName(kind AggregateType, col string) (string, error) {
	col = strings.TrimSpace(col)
	if !formula.IsIdentifier(col) {
		return "", types.InvalidArgumentf("%s requires an output column name, got %q", kind, col)
	}
	return col, nil
}

// Count counts the rows of each group
func Count(col string) (AggregationSpec, error) {
	name, err := outputName(TypeCount, col)
	if err != nil {
		return AggregationSpec{}, err
	}
	return newSpec(TypeCount, []Pair{{Output: name}}, Params{}), nil
}

// CountWhere counts the rows for which every filter is true
func CountWhere(col string, filters ...condition.Filter) (AggregationSpec, error) {
	name, err := outputName(TypeCountWhere, col)
	if err != nil {
		return AggregationSpec{}, err
	}
	if len(filters) == 0 {
		return AggregationSpec{}, types.InvalidArgumentf("count_where requires at least one filter")
	}
	for i, f := range filters {
		if f == nil {
			return AggregationSpec{}, types.InvalidArgumentf("count_where filter %d is nil", i)
		}
	}
	return newSpec(TypeCountWhere, []Pair{{Output: name}}, Params{Filter: condition.And(filters...)}), nil
}

// CountWhereExpr is CountWhere with filters given as expressions
func CountWhereExpr(col string, exprs ...string) (AggregationSpec, error) {
	filters := make([]condition.Filter, 0, len(exprs))
	for _, e := range exprs {
		f, err := condition.NewExprCondition(e)
		if err != nil {
			return AggregationSpec{}, err
		}
		filters = append(filters, f)
	}
	return CountWhere(col, filters...)
}

// Partition collects the rows of each group into a nested table
func Partition(col string, includeByColumns bool) (AggregationSpec, error) {
	name, err := outputName(TypePartition, col)
	if err != nil {
		return AggregationSpec{}, err
	}
	return newSpec(TypePartition, []Pair{{Output: name}}, Params{IncludeByColumns: includeByColumns}), nil
}

// Formula builds a formula aggregation.
//
// With an empty param the formula is self-contained, "out = expr", and every
// column it references is bound to that column's group values. Otherwise the
// formula is an expression over param, evaluated once per column pair with
// param bound to the pair's source values.
func Formula(f, param string, cols ...string) (AggregationSpec, error) {
	f = strings.TrimSpace(f)
	param = strings.TrimSpace(param)
	if f == "" {
		return AggregationSpec{}, types.InvalidArgumentf("formula cannot be empty")
	}
	if param == "" {
		if len(cols) > 0 {
			return AggregationSpec{}, types.InvalidArgumentf("formula columns require a parameter name")
		}
		output, expression, ok := formula.SplitAssignment(f)
		if !ok {
			return AggregationSpec{}, types.InvalidArgumentf("formula %q must have the form \"out = expr\"", f)
		}
		return newSpec(TypeFormula, []Pair{{Output: output}}, Params{Formula: expression}), nil
	}
	if !formula.IsIdentifier(param) {
		return AggregationSpec{}, types.InvalidArgumentf("invalid formula parameter %q", param)
	}
	if len(cols) == 0 {
		return AggregationSpec{}, types.InvalidArgumentf("formula with parameter %q requires at least one column", param)
	}
	if formula.HasAssignment(f) {
		return AggregationSpec{}, types.InvalidArgumentf("formula %q cannot both assign an output and use parameter %q", f, param)
	}
	return columnList(TypeFormula, Params{Formula: f, Param: param}, cols)
}
