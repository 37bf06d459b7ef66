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
Package types provides the column model, engine configuration and error kinds
shared by every tableagg package.

# Values

A Value is an immutable typed cell. Nulls keep their kind and are distinct
from zero or empty values:

	types.Int(42)
	types.Float(math.NaN())
	types.Null(types.KindInt)
	types.ValueOf("abc") // KindString

Values are ordered with Compare. Numeric kinds compare across int, float and
decimal, NaN is greater than every other number, and nulls are placed first or
last according to the NullOrdering.

# Tables

Columns are named, typed and immutable. A Table is an ordered set of columns
of equal length with unique names:

	t := types.MustTable(
		types.MustColumn("sym", "AAPL", "MSFT", "AAPL"),
		types.MustColumn("price", 10.5, 20.0, 11.5),
	)

MarshalBinary yields a deterministic encoding, so two runs that produce the
same result produce the same bytes.

# Configuration

Config carries null policies and worker pool sizes. It can be created from
presets or loaded from YAML:

	config, err := types.LoadConfig([]byte("nullOrdering: last\nworkerConfig:\n  workers: 4\n"))

# Errors

Every failure is an *Error whose Type is one of the error kinds. Use errors.Is
with the sentinels ErrInvalidArgument, ErrColumnNotFound, ErrTypeMismatch,
ErrSchemaConflict, ErrCancelled and ErrOverflow.
*/
package types
