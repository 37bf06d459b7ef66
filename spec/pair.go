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
	"strings"

	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/types"
)

// Pair maps a source column to an output column
type Pair struct {
	Output string
	Input  string
}

// ParsePair parses "name" or "new_name = source_name". A new name must be an
// identifier; a plain name refers to an existing column and is checked when
// the spec is applied.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "=")
	switch len(parts) {
	case 1:
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return Pair{}, types.InvalidArgumentf("empty column name")
		}
		return Pair{Output: name, Input: name}, nil
	case 2:
		output, input := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if output == "" || input == "" {
			return Pair{}, types.InvalidArgumentf("malformed column rename %q", s)
		}
		if !formula.IsIdentifier(output) {
			return Pair{}, types.InvalidArgumentf("invalid output column name %q in %q", output, s)
		}
		return Pair{Output: output, Input: input}, nil
	default:
		return Pair{}, types.InvalidArgumentf("malformed column rename %q, expected exactly one '='", s)
	}
}

// ParsePairs parses every column expression
func ParsePairs(cols ...string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(cols))
	for _, c := range cols {
		p, err := ParsePair(c)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func (p Pair) String() string {
	if p.Input == "" || p.Input == p.Output {
		return p.Output
	}
	return p.Output + " = " + p.Input
}
