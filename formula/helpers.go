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
	"math"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/rulego/tableagg/types"
	"github.com/spf13/cast"
)

// vectorFunc reduces the non-null items of a group vector
type vectorFunc func(items []types.Value) (interface{}, error)

// helpers are registered under these names and override the expr builtins
// of the same name
var helpers = map[string]vectorFunc{
	"sum":           vectorSum,
	"avg":           vectorAvg,
	"min":           vectorExtreme(-1),
	"max":           vectorExtreme(1),
	"count":         vectorCount,
	"std":           vectorStd,
	"var":           vectorVar,
	"median":        vectorMedian,
	"first":         vectorFirst,
	"last":          vectorLast,
	"countDistinct": vectorCountDistinct,
}

// HelperNames 返回已注册的向量函数名
func HelperNames() []string {
	names := make([]string, 0, len(helpers))
	for name := range helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func helperOptions() []expr.Option {
	options := make([]expr.Option, 0, len(helpers))
	for _, name := range HelperNames() {
		name, fn := name, helpers[name]
		options = append(options, expr.Function(name, func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
			}
			items, err := nonNull(params[0])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return fn(items)
		}))
	}
	return options
}

// nonNull converts a vector argument into values, dropping nulls
func nonNull(arg interface{}) ([]types.Value, error) {
	var raw []interface{}
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []types.Value:
		raw = make([]interface{}, len(v))
		for i, item := range v {
			raw[i] = item.Interface()
		}
	default:
		slice, err := cast.ToSliceE(arg)
		if err != nil {
			return nil, fmt.Errorf("argument is not a vector: %T", arg)
		}
		raw = slice
	}
	items := make([]types.Value, 0, len(raw))
	for _, x := range raw {
		v := types.ValueOf(x)
		if !v.IsNull() {
			items = append(items, v)
		}
	}
	return items, nil
}

func floats(items []types.Value) ([]float64, error) {
	out := make([]float64, len(items))
	for i, v := range items {
		f, ok := v.AsFloat()
		if !ok {
			return nil, fmt.Errorf("non-numeric value %s", v)
		}
		out[i] = f
	}
	return out, nil
}

func vectorSum(items []types.Value) (interface{}, error) {
	allInt := true
	var isum int64
	for _, v := range items {
		if v.Kind() != types.KindInt {
			allInt = false
			break
		}
		next := isum + v.Int()
		if (next > isum) != (v.Int() > 0) {
			allInt = false
			break
		}
		isum = next
	}
	if allInt {
		return isum, nil
	}
	values, err := floats(items)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, f := range values {
		sum += f
	}
	return sum, nil
}

func vectorAvg(items []types.Value) (interface{}, error) {
	if len(items) == 0 {
		return nil, nil
	}
	values, err := floats(items)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, f := range values {
		sum += f
	}
	return sum / float64(len(values)), nil
}

func vectorExtreme(sign int) vectorFunc {
	return func(items []types.Value) (interface{}, error) {
		if len(items) == 0 {
			return nil, nil
		}
		best := items[0]
		for _, v := range items[1:] {
			if types.Compare(v, best, types.NullsFirst)*sign > 0 {
				best = v
			}
		}
		return best.Interface(), nil
	}
}

func vectorCount(items []types.Value) (interface{}, error) {
	return int64(len(items)), nil
}

func vectorVar(items []types.Value) (interface{}, error) {
	if len(items) < 2 {
		return nil, nil
	}
	values, err := floats(items)
	if err != nil {
		return nil, err
	}
	// Welford
	var mean, m2 float64
	for i, x := range values {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	return m2 / float64(len(values)-1), nil
}

func vectorStd(items []types.Value) (interface{}, error) {
	v, err := vectorVar(items)
	if v == nil || err != nil {
		return v, err
	}
	return math.Sqrt(v.(float64)), nil
}

func vectorMedian(items []types.Value) (interface{}, error) {
	if len(items) == 0 {
		return nil, nil
	}
	values, err := floats(items)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(values, func(i, j int) bool {
		return types.Compare(types.Float(values[i]), types.Float(values[j]), types.NullsFirst) < 0
	})
	n := len(values)
	if n%2 == 1 {
		return values[n/2], nil
	}
	return (values[n/2-1] + values[n/2]) / 2, nil
}

func vectorFirst(items []types.Value) (interface{}, error) {
	if len(items) == 0 {
		return nil, nil
	}
	return items[0].Interface(), nil
}

func vectorLast(items []types.Value) (interface{}, error) {
	if len(items) == 0 {
		return nil, nil
	}
	return items[len(items)-1].Interface(), nil
}

func vectorCountDistinct(items []types.Value) (interface{}, error) {
	seen := make(map[string]struct{}, len(items))
	for _, v := range items {
		seen[v.Key()] = struct{}{}
	}
	return int64(len(seen)), nil
}
