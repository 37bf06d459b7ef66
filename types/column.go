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

package types

import "strings"

// Column is a named, typed, immutable sequence of values
type Column struct {
	name   string
	kind   Kind
	values []Value
}

// NewColumn creates a column of the given kind. Nulls of any kind are
// re-tagged with the column kind; non-null values must match the kind unless
// the column is an object column.
func NewColumn(name string, kind Kind, values []Value) (*Column, error) {
	if strings.TrimSpace(name) == "" {
		return nil, InvalidArgumentf("column name cannot be empty")
	}
	data := make([]Value, len(values))
	for i, v := range values {
		switch {
		case v.IsNull():
			data[i] = Null(kind)
		case kind == KindObject || v.Kind() == kind:
			data[i] = v
		default:
			return nil, TypeMismatchf("row %d holds a %s value in a %s column", i, v.Kind(), kind).WithColumn(name)
		}
	}
	return &Column{name: name, kind: kind, values: data}, nil
}

// ColumnOf builds a column from Go values. The kind is taken from the first
// non-null value; ints mixed with floats widen to float.
func ColumnOf(name string, items ...interface{}) (*Column, error) {
	values := make([]Value, len(items))
	kind := KindObject
	found := false
	for i, item := range items {
		values[i] = ValueOf(item)
		if values[i].IsNull() {
			continue
		}
		k := values[i].Kind()
		switch {
		case !found:
			kind, found = k, true
		case kind == KindInt && k == KindFloat:
			kind = KindFloat
		case kind == KindFloat && k == KindInt:
		case kind != k:
			kind = KindObject
		}
	}
	if kind == KindFloat {
		for i, v := range values {
			if !v.IsNull() && v.Kind() == KindInt {
				values[i] = Float(float64(v.Int()))
			}
		}
	}
	return NewColumn(name, kind, values)
}

// MustColumn is like ColumnOf but panics on error
func MustColumn(name string, items ...interface{}) *Column {
	c, err := ColumnOf(name, items...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Column) Name() string {
	return c.name
}

func (c *Column) Kind() Kind {
	return c.kind
}

func (c *Column) Len() int {
	return len(c.values)
}

// Value returns the i-th value
func (c *Column) Value(i int) Value {
	return c.values[i]
}

// Values returns a copy of the column data
func (c *Column) Values() []Value {
	out := make([]Value, len(c.values))
	copy(out, c.values)
	return out
}

// Rename returns a column with a new name sharing the same data
func (c *Column) Rename(name string) *Column {
	return &Column{name: name, kind: c.kind, values: c.values}
}

// take returns a column made of the given rows
func (c *Column) take(rows []int) *Column {
	data := make([]Value, len(rows))
	for i, r := range rows {
		data[i] = c.values[r]
	}
	return &Column{name: c.name, kind: c.kind, values: data}
}
