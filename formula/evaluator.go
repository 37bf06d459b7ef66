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
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/tableagg/types"
)

// Evaluator evaluates a formula against bound variables. For group formulas
// every variable holds the ordered values of one column within the group.
type Evaluator interface {
	Evaluate(expression string, vars map[string]interface{}) (interface{}, error)
}

// Compiler is implemented by evaluators that can check an expression without
// running it. The reducer uses it to reject bad formulas before any row work.
type Compiler interface {
	Compile(expression string) error
}

// ExprEvaluator evaluates formulas with expr-lang/expr. Compiled programs are
// cached per expression and shared between goroutines.
type ExprEvaluator struct {
	programs sync.Map // expression -> *vm.Program
	options  []expr.Option
}

// NewExprEvaluator 创建表达式求值器，extra 中的函数会覆盖同名的内置函数
func NewExprEvaluator(extra ...expr.Option) *ExprEvaluator {
	options := append(helperOptions(), extra...)
	return &ExprEvaluator{options: options}
}

var (
	defaultEvaluator     *ExprEvaluator
	defaultEvaluatorOnce sync.Once
)

// Default returns the shared expr-lang evaluator
func Default() *ExprEvaluator {
	defaultEvaluatorOnce.Do(func() {
		defaultEvaluator = NewExprEvaluator()
	})
	return defaultEvaluator
}

// Compile 编译表达式并缓存
func (e *ExprEvaluator) Compile(expression string) error {
	_, err := e.program(expression)
	return err
}

// Evaluate 计算表达式
func (e *ExprEvaluator) Evaluate(expression string, vars map[string]interface{}) (interface{}, error) {
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	result, err := expr.Run(program, vars)
	if err != nil {
		return nil, &types.Error{
			Type:    types.ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("formula %q failed", expression),
			Cause:   err,
		}
	}
	return result, nil
}

func (e *ExprEvaluator) program(expression string) (*vm.Program, error) {
	if cached, ok := e.programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, e.options...)
	if err != nil {
		return nil, &types.Error{
			Type:    types.ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("invalid formula %q", expression),
			Cause:   err,
		}
	}
	actual, _ := e.programs.LoadOrStore(expression, program)
	return actual.(*vm.Program), nil
}
