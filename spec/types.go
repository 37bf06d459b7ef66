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

// AggregateType 聚合类型
type AggregateType string

const (
	TypeSum           AggregateType = "sum"
	TypeAbsSum        AggregateType = "abs_sum"
	TypeAvg           AggregateType = "avg"
	TypeMin           AggregateType = "min"
	TypeMax           AggregateType = "max"
	TypeStd           AggregateType = "std"
	TypeVar           AggregateType = "var"
	TypeGroup         AggregateType = "group"
	TypeFirst         AggregateType = "first"
	TypeLast          AggregateType = "last"
	TypeCountDistinct AggregateType = "count_distinct"
	TypeDistinct      AggregateType = "distinct"
	TypeUnique        AggregateType = "unique"
	TypeMedian        AggregateType = "median"
	TypePercentile    AggregateType = "percentile"
	TypeSortedFirst   AggregateType = "sorted_first"
	TypeSortedLast    AggregateType = "sorted_last"
	TypeWeightedAvg   AggregateType = "weighted_avg"
	TypeWeightedSum   AggregateType = "weighted_sum"

	// 结构型聚合，只有一个输出列名
	TypeCount      AggregateType = "count"
	TypeCountWhere AggregateType = "count_where"
	TypePartition  AggregateType = "partition"
	TypeFormula    AggregateType = "formula"
)

// AllTypes lists every aggregation kind in declaration order
var AllTypes = []AggregateType{
	TypeSum, TypeAbsSum, TypeAvg, TypeMin, TypeMax, TypeStd, TypeVar, TypeGroup, TypeFirst, TypeLast,
	TypeCountDistinct, TypeDistinct, TypeUnique, TypeMedian, TypePercentile,
	TypeSortedFirst, TypeSortedLast, TypeWeightedAvg, TypeWeightedSum,
	TypeCount, TypeCountWhere, TypePartition, TypeFormula,
}

// IsColumnList reports whether the kind takes a list of "new = source"
// column pairs. Structural kinds take a single output name instead.
func (t AggregateType) IsColumnList() bool {
	switch t {
	case TypeCount, TypeCountWhere, TypePartition:
		return false
	}
	return true
}

// IsValid reports whether t is a known kind
func (t AggregateType) IsValid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t AggregateType) String() string {
	return string(t)
}
