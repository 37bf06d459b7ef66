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

/*
Package functions implements the reduction strategies, one per aggregation
kind.

# Aggregator Interface

Every strategy is an incremental accumulator:

	type AggregatorFunction interface {
		Function
		New() AggregatorFunction
		Add(in Input) error
		Result() (types.Value, error)
		Reset()
		Clone() AggregatorFunction
	}

Rows of a group arrive in table order. Input carries the row index and the
value, plus the weight, sort key, filter verdict or formula arguments for the
kinds that need them.

# Strategy Table

Kinds are dispatched through a fixed table. Each Definition has a Bind step,
run once per output column before any row is read, that checks column kinds
(returning TypeMismatch) and decides the output kind:

	sum, abs_sum        int -> int (overflow checked), float -> float, decimal -> decimal
	avg                 float, decimal -> decimal
	std, var            float, Bessel's correction
	min, max            input kind, NaN is the largest value
	first, last         input kind, nulls included
	sorted_first/last   input kind, ordered by another column, ties by row
	median, percentile  input kind, or float/decimal when averaging
	count, count_where  int
	count_distinct      int
	distinct, group     vector
	unique              input kind
	weighted_avg        float
	weighted_sum        int for two int columns, float otherwise
	partition           nested table
	formula             inferred from the results

Nulls are skipped by the numeric and ordering reductions. Object columns are
accepted by numeric reductions and coerced with spf13/cast while reading.

# Usage

	opts := &functions.Options{Config: types.NewConfig(), InputKind: types.KindInt}
	fn, kind, err := functions.Create(spec.TypeSum, opts)
	fn.Add(functions.Input{Value: types.Int(1)})
	fn.Add(functions.Input{Value: types.Int(2)})
	v, err := fn.Result() // 3
*/
package functions
