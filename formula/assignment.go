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

package formula

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/rulego/tableagg/types"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name can be used as a column name in formulas
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// SplitAssignment splits "out = expr" into the output name and the
// expression. Comparison operators (==, !=, <=, >=) are not assignments.
func SplitAssignment(formula string) (output, expression string, ok bool) {
	i := assignmentIndex(formula)
	if i < 0 {
		return "", "", false
	}
	output = strings.TrimSpace(formula[:i])
	expression = strings.TrimSpace(formula[i+1:])
	if !IsIdentifier(output) || expression == "" {
		return "", "", false
	}
	return output, expression, true
}

// HasAssignment reports whether the formula contains a top level "=" that is
// not part of a comparison operator
func HasAssignment(formula string) bool {
	return assignmentIndex(formula) >= 0
}

func assignmentIndex(formula string) int {
	var quote byte
	for i := 0; i < len(formula); i++ {
		c := formula[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '=':
			if i+1 < len(formula) && formula[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.IndexByte("=!<>", formula[i-1]) >= 0 {
				continue
			}
			return i
		}
	}
	return -1
}

// identifierCollector gathers identifiers, counting the ones used as callees
// separately so function names are not mistaken for columns
type identifierCollector struct {
	seen    map[string]int
	callees map[string]int
}

func (c *identifierCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.seen[n.Value]++
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[id.Value]++
		}
	}
}

// References lists the variables an expression reads, sorted by name
func References(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, &types.Error{
			Type:    types.ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("invalid expression %q", expression),
			Cause:   err,
		}
	}
	collector := &identifierCollector{seen: map[string]int{}, callees: map[string]int{}}
	ast.Walk(&tree.Node, collector)
	names := make([]string, 0, len(collector.seen))
	for name, n := range collector.seen {
		if n > collector.callees[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// CallsHelper reports whether the expression calls one of the vector helpers
// (sum, avg, ...). An expression without such a call is evaluated row by row.
func CallsHelper(expression string) (bool, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return false, &types.Error{
			Type:    types.ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("invalid expression %q", expression),
			Cause:   err,
		}
	}
	collector := &identifierCollector{seen: map[string]int{}, callees: map[string]int{}}
	ast.Walk(&tree.Node, collector)
	for name := range collector.callees {
		if _, ok := helpers[name]; ok {
			return true, nil
		}
	}
	return false, nil
}
