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
Package spec builds aggregation specifications.

Every factory validates what it can without a table and returns an immutable
AggregationSpec. Binding to concrete columns happens when the spec is applied.

# Column-list kinds

Most kinds accept column expressions, either "name" or "new_name = source":

	spec.Sum("qty", "total = price")
	spec.Pct(0.99, false, "p99 = latency")
	spec.WeightedAvg("qty", "vwap = price")
	spec.Unique(true, types.Int(-1), "code")

A column-list spec without columns is only valid for agg_all_by, which applies
it to every column that is not a grouping column.

# Structural kinds

Count, CountWhere and Partition take a single output name:

	spec.Count("n")
	spec.CountWhereExpr("big", "qty > 100", "side == 'buy'")
	spec.Partition("rows", false)

# Formulas

A formula is either self-contained:

	spec.Formula("spread = max(price) - min(price)", "")

or parameterised and applied to each column:

	spec.Formula("sum(x) / count(x)", "x", "avg_bid = bid", "avg_ask = ask")

Specs are combined with NewSet.
*/
package spec
