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

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Kind is the declared type of a column or a cell
type Kind int

const (
	// KindObject generic/opaque values, no ordering
	KindObject Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindTime
	KindDecimal
	// KindVector ordered list of values, produced by group and distinct
	KindVector
	// KindTable nested table, produced by partition
	KindTable
)

// String returns the lower-case kind name
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindDecimal:
		return "decimal"
	case KindVector:
		return "vector"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this kind take part in arithmetic
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat || k == KindDecimal
}

// IsOrdered reports whether values of this kind have a natural ordering
func (k Kind) IsOrdered() bool {
	switch k {
	case KindInt, KindFloat, KindDecimal, KindBool, KindString, KindTime:
		return true
	}
	return false
}

// Value is an immutable typed cell. The zero Value is a null object.
type Value struct {
	kind  Kind
	valid bool
	v     interface{}
}

// Null returns a null of the given kind
func Null(kind Kind) Value {
	return Value{kind: kind}
}

func Int(v int64) Value {
	return Value{kind: KindInt, valid: true, v: v}
}

func Float(v float64) Value {
	return Value{kind: KindFloat, valid: true, v: v}
}

func Bool(v bool) Value {
	return Value{kind: KindBool, valid: true, v: v}
}

func String(v string) Value {
	return Value{kind: KindString, valid: true, v: v}
}

func Time(v time.Time) Value {
	return Value{kind: KindTime, valid: true, v: v}
}

func Decimal(v decimal.Decimal) Value {
	return Value{kind: KindDecimal, valid: true, v: v}
}

// Object wraps an arbitrary Go value; nil yields a null object
func Object(v interface{}) Value {
	if v == nil {
		return Null(KindObject)
	}
	return Value{kind: KindObject, valid: true, v: v}
}

// Vector wraps an ordered list of values. The slice is not copied.
func Vector(values []Value) Value {
	return Value{kind: KindVector, valid: true, v: values}
}

// TableValue wraps a nested table
func TableValue(t *Table) Value {
	if t == nil {
		return Null(KindTable)
	}
	return Value{kind: KindTable, valid: true, v: t}
}

// ValueOf converts a Go value into a Value, inferring its kind.
func ValueOf(x interface{}) Value {
	switch val := x.(type) {
	case nil:
		return Null(KindObject)
	case Value:
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return Int(cast.ToInt64(val))
	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val))
		}
		return Int(int64(val))
	case float32:
		return Float(float64(val))
	case float64:
		return Float(val)
	case bool:
		return Bool(val)
	case string:
		return String(val)
	case time.Time:
		return Time(val)
	case decimal.Decimal:
		return Decimal(val)
	case []Value:
		return Vector(val)
	case []interface{}:
		values := make([]Value, len(val))
		for i, item := range val {
			values[i] = ValueOf(item)
		}
		return Vector(values)
	case *Table:
		return TableValue(val)
	default:
		return Object(val)
	}
}

// Kind returns the declared kind, also for nulls
func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return !v.valid
}

// Int returns the integer payload; it panics for other kinds
func (v Value) Int() int64 {
	return v.v.(int64)
}

// Float returns the float payload; it panics for other kinds
func (v Value) Float() float64 {
	return v.v.(float64)
}

func (v Value) Bool() bool {
	return v.v.(bool)
}

// Str returns the string payload
func (v Value) Str() string {
	return v.v.(string)
}

func (v Value) Time() time.Time {
	return v.v.(time.Time)
}

func (v Value) Decimal() decimal.Decimal {
	return v.v.(decimal.Decimal)
}

func (v Value) Vector() []Value {
	if !v.valid {
		return nil
	}
	return v.v.([]Value)
}

func (v Value) Table() *Table {
	if !v.valid {
		return nil
	}
	return v.v.(*Table)
}

// Interface returns the Go payload, nil for nulls
func (v Value) Interface() interface{} {
	if !v.valid {
		return nil
	}
	return v.v
}

// AsFloat converts numeric values to float64
func (v Value) AsFloat() (float64, bool) {
	if !v.valid {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.Int()), true
	case KindFloat:
		return v.Float(), true
	case KindDecimal:
		return v.Decimal().InexactFloat64(), true
	}
	return 0, false
}

// AsDecimal converts numeric values to decimal
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	if !v.valid {
		return decimal.Zero, false
	}
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.Int()), true
	case KindFloat:
		return decimal.NewFromFloat(v.Float()), true
	case KindDecimal:
		return v.Decimal(), true
	}
	return decimal.Zero, false
}

// ConvertTo converts v to the given kind. Nulls convert to nulls of the
// target kind; numeric kinds convert between each other.
func (v Value) ConvertTo(kind Kind) (Value, error) {
	if v.kind == kind {
		return v, nil
	}
	if !v.valid {
		return Null(kind), nil
	}
	if kind == KindObject {
		return Object(v.v), nil
	}
	switch kind {
	case KindInt:
		switch v.kind {
		case KindFloat:
			f := v.Float()
			if f != math.Trunc(f) || math.IsNaN(f) || math.IsInf(f, 0) {
				break
			}
			return Int(int64(f)), nil
		case KindDecimal:
			if v.Decimal().IsInteger() {
				return Int(v.Decimal().IntPart()), nil
			}
		}
	case KindFloat:
		if f, ok := v.AsFloat(); ok {
			return Float(f), nil
		}
	case KindDecimal:
		if d, ok := v.AsDecimal(); ok {
			return Decimal(d), nil
		}
	}
	return Value{}, NewError(ErrorTypeTypeMismatch, "cannot convert %s value %s to %s", v.kind, v, kind)
}

// String renders the value for display
func (v Value) String() string {
	if !v.valid {
		return "null"
	}
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case KindVector:
		items := v.Vector()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindTable:
		t := v.Table()
		return fmt.Sprintf("table(%d rows x %d columns)", t.NumRows(), t.NumColumns())
	default:
		return cast.ToString(v.v)
	}
}

// Key returns a deterministic encoding used for grouping and distinct
// detection. Null equals null, NaN equals NaN, and the kind is part of the key.
func (v Value) Key() string {
	if !v.valid {
		return "N"
	}
	var sb strings.Builder
	sb.WriteByte(byte('a' + v.kind))
	switch v.kind {
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case KindFloat:
		f := v.Float()
		if f == 0 {
			f = 0 // -0 and +0 group together
		}
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case KindString:
		sb.WriteString(v.Str())
	case KindTime:
		sb.WriteString(v.Time().UTC().Format(time.RFC3339Nano))
	case KindDecimal:
		sb.WriteString(v.Decimal().String())
	case KindVector:
		sb.WriteString(EncodeKey(v.Vector()))
	case KindTable:
		sb.WriteString(fmt.Sprintf("%p", v.Table()))
	default:
		sb.WriteString(fmt.Sprintf("%T:%v", v.v, v.v))
	}
	return sb.String()
}

// Equal reports key equality
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// EncodeKey encodes a tuple of values (a GroupKey) into a single string.
// Each element is length prefixed so that tuples never collide.
func EncodeKey(values []Value) string {
	var sb strings.Builder
	for _, v := range values {
		k := v.Key()
		sb.WriteString(strconv.Itoa(len(k)))
		sb.WriteByte(':')
		sb.WriteString(k)
	}
	return sb.String()
}

// Compare orders two values. Nulls are placed according to ordering, NaN is
// greater than every other number, numeric kinds compare with each other and
// unrelated kinds fall back to kind order.
func Compare(a, b Value, ordering NullOrdering) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		if ordering == NullsLast {
			return 1
		}
		return -1
	case b.IsNull():
		if ordering == NullsLast {
			return -1
		}
		return 1
	}

	if a.kind.IsNumeric() && b.kind.IsNumeric() {
		return compareNumeric(a, b)
	}
	if a.kind != b.kind {
		return compareInt(int64(a.kind), int64(b.kind))
	}

	switch a.kind {
	case KindBool:
		x, y := a.Bool(), b.Bool()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case KindString:
		return strings.Compare(a.Str(), b.Str())
	case KindTime:
		return a.Time().Compare(b.Time())
	default:
		return strings.Compare(a.Key(), b.Key())
	}
}

func compareNumeric(a, b Value) int {
	if a.kind == KindInt && b.kind == KindInt {
		return compareInt(a.Int(), b.Int())
	}
	if a.kind != KindFloat && b.kind != KindFloat {
		x, _ := a.AsDecimal()
		y, _ := b.AsDecimal()
		return x.Cmp(y)
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return 1
	case yNaN:
		return -1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
