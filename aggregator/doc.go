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
Package aggregator implements the GroupReducer, which applies a list of
aggregation specs to a table and emits exactly one row per distinct group key.

# Lifecycle

A reducer moves through

	Init -> Binding -> Partitioning -> Reducing -> Emitting -> Done

and ends in Failed or Cancelled on error. Run may be called once.

Binding resolves every column the specs reference and checks each strategy
against the column kinds, before any row is read:

• SchemaConflict - duplicate group-by columns, duplicate output names, outputs named like a group-by column
• InvalidArgument - a column-list spec with no columns
• ColumnNotFound - unknown group-by, input, weight, order-by, filter or formula column
• TypeMismatch - a strategy that cannot read the column kind

Partitioning splits the rows in chunks that are grouped concurrently and
merged in chunk order, so groups are numbered by first occurrence whatever
the worker count. Reducing shards groups to workers by the xxhash of the
group key; a worker owns the reduction states of its groups and feeds them
rows in table order. Emitting writes the group-by columns, then one column
per (spec, pair) in declaration order.

# Usage

	specs := []spec.AggregationSpec{
		spec.Must(spec.Sum("total = price")),
		spec.Must(spec.Median(true, "price")),
		spec.Must(spec.Count("n")),
	}
	out, err := aggregator.Apply(ctx, table, []string{"sym"}, specs, types.NewConfig())

With a custom evaluator or logger:

	r := aggregator.NewGroupReducer(table, []string{"sym"}, specs, aggregator.Options{
		Config:    types.SingleThreadedConfig(),
		Evaluator: myEvaluator,
		Logger:    logger.NewDiscardLogger(),
	})
	out, err := r.Run(ctx)

Cancelling ctx stops the run between groups with ErrCancelled; no partial
table is returned.
*/
package aggregator
