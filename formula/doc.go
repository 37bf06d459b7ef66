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
Package formula evaluates formula aggregations.

A formula is evaluated once per group. Each variable is bound to the ordered
values of one column within the group, nulls included as nil:

	e := formula.NewExprEvaluator()
	v, err := e.Evaluate("sum(price) / count(price)", map[string]interface{}{
		"price": []interface{}{1.0, nil, 3.0},
	})

The default evaluator is backed by expr-lang/expr and registers vector
helpers that skip nulls:

	sum avg min max count std var median first last countDistinct

They replace the expr builtins of the same name. Extra expr options passed to
NewExprEvaluator are applied after the helpers.

SplitAssignment separates "out = expr" formulas and References lists the
columns an expression reads, ignoring function names.
*/
package formula
