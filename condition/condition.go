package condition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/types"
)

// Filter is a boolean predicate over one row. The env maps column names to
// the row's values, nulls are nil.
type Filter interface {
	Evaluate(env map[string]interface{}) (bool, error)
	// Columns lists the columns the predicate reads
	Columns() []string
	String() string
}

type ExprCondition struct {
	expression string
	program    *vm.Program
	columns    []string
}

// NewExprCondition compiles a boolean expr-lang expression
func NewExprCondition(expression string) (*ExprCondition, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, types.InvalidArgumentf("filter expression cannot be empty")
	}
	// 添加自定义字符串函数支持（startsWith、endsWith、contains是内置操作符）
	options := []expr.Option{
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match function requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, nil
			}
			return matchesLikePattern(text, pattern), nil
		}),
		expr.Function("is_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_null function requires 1 parameter")
			}
			return params[0] == nil, nil
		}),
		expr.Function("is_not_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_not_null function requires 1 parameter")
			}
			return params[0] != nil, nil
		}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	}

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, &types.Error{
			Type:    types.ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("invalid filter %q", expression),
			Cause:   err,
		}
	}
	columns, err := formula.References(expression)
	if err != nil {
		return nil, err
	}
	return &ExprCondition{expression: expression, program: program, columns: columns}, nil
}

// Evaluate runs the predicate. A predicate that fails because one of its
// operands is null evaluates to false; any other failure is returned.
func (ec *ExprCondition) Evaluate(env map[string]interface{}) (bool, error) {
	result, err := expr.Run(ec.program, env)
	if err != nil {
		for _, c := range ec.columns {
			if env[c] == nil {
				return false, nil
			}
		}
		return false, &types.Error{
			Type:    types.ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("filter %q failed", ec.expression),
			Cause:   err,
		}
	}
	b, ok := result.(bool)
	if !ok {
		return false, types.InvalidArgumentf("filter %q returned %T, expected bool", ec.expression, result)
	}
	return b, nil
}

func (ec *ExprCondition) Columns() []string {
	return ec.columns
}

func (ec *ExprCondition) String() string {
	return ec.expression
}

// andFilter is true when every filter is true
type andFilter struct {
	filters []Filter
}

// And composes filters with logical AND. Evaluation stops at the first false.
func And(filters ...Filter) Filter {
	if len(filters) == 1 {
		return filters[0]
	}
	return &andFilter{filters: filters}
}

func (a *andFilter) Evaluate(env map[string]interface{}) (bool, error) {
	for _, f := range a.filters {
		ok, err := f.Evaluate(env)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a *andFilter) Columns() []string {
	seen := map[string]struct{}{}
	var columns []string
	for _, f := range a.filters {
		for _, c := range f.Columns() {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				columns = append(columns, c)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

func (a *andFilter) String() string {
	parts := make([]string, len(a.filters))
	for i, f := range a.filters {
		parts[i] = "(" + f.String() + ")"
	}
	return strings.Join(parts, " && ")
}

// FuncFilter adapts a Go function to Filter
type FuncFilter struct {
	name    string
	columns []string
	fn      func(env map[string]interface{}) (bool, error)
}

// NewFuncFilter creates a filter reading the given columns
func NewFuncFilter(name string, columns []string, fn func(env map[string]interface{}) (bool, error)) *FuncFilter {
	return &FuncFilter{name: name, columns: columns, fn: fn}
}

func (f *FuncFilter) Evaluate(env map[string]interface{}) (bool, error) {
	return f.fn(env)
}

func (f *FuncFilter) Columns() []string {
	return f.columns
}

func (f *FuncFilter) String() string {
	return f.name
}

// matchesLikePattern 实现LIKE模式匹配
// 支持%（匹配任意字符序列）和_（匹配单个字符）
func matchesLikePattern(text, pattern string) bool {
	return likeMatch(text, pattern, 0, 0)
}

// likeMatch 递归实现LIKE匹配算法
func likeMatch(text, pattern string, textIndex, patternIndex int) bool {
	if patternIndex >= len(pattern) {
		return textIndex >= len(text)
	}
	if textIndex >= len(text) {
		// 剩余模式必须全部是%
		return strings.Trim(pattern[patternIndex:], "%") == ""
	}
	switch pattern[patternIndex] {
	case '%':
		for i := textIndex; i <= len(text); i++ {
			if likeMatch(text, pattern, i, patternIndex+1) {
				return true
			}
		}
		return false
	case '_':
		return likeMatch(text, pattern, textIndex+1, patternIndex+1)
	default:
		if text[textIndex] != pattern[patternIndex] {
			return false
		}
		return likeMatch(text, pattern, textIndex+1, patternIndex+1)
	}
}
