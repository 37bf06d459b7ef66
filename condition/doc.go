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
Package condition provides the row filters used by count_where aggregations.

Filters are compiled with the expr-lang library. Besides the expr operators,
SQL-like helpers are available:

	like_match(text, pattern) - SQL LIKE with % and _ wildcards
	is_null(value)            - value is NULL
	is_not_null(value)        - value is not NULL

# Filter Interface

	type Filter interface {
		Evaluate(env map[string]interface{}) (bool, error)
		Columns() []string
		String() string
	}

Columns lists the columns a filter reads so that the reducer can validate them
against the table schema before any row is processed.

# Usage

	positive, _ := condition.NewExprCondition("qty > 0")
	buy, _ := condition.NewExprCondition("side == 'buy'")
	f := condition.And(positive, buy)

	ok, err := f.Evaluate(map[string]interface{}{"qty": 10, "side": "buy"}) // true, nil

A comparison against a NULL operand is false. Other evaluation errors, such as
comparing a number with a string, are returned to the caller.

Go predicates can be wrapped with NewFuncFilter.
*/
package condition
