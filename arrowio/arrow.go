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

// Package arrowio converts tables to and from Apache Arrow records.
//
// Scalar kinds map onto Arrow types:
//
//	int      int64
//	float    float64
//	bool     boolean
//	string   utf8
//	time     timestamp[ns, UTC]
//	decimal  utf8 with field metadata tableagg.kind=decimal
//
// Vector, nested table and object columns have no Arrow counterpart here and
// are rejected with TypeMismatch.
package arrowio

import (
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rulego/tableagg/types"
	"github.com/shopspring/decimal"
)

// KindMetadataKey is the field metadata key carrying the column kind
const KindMetadataKey = "tableagg.kind"

var timestampType = &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}

func arrowType(kind types.Kind) (arrow.DataType, error) {
	switch kind {
	case types.KindInt:
		return arrow.PrimitiveTypes.Int64, nil
	case types.KindFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case types.KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case types.KindString, types.KindDecimal:
		return arrow.BinaryTypes.String, nil
	case types.KindTime:
		return timestampType, nil
	}
	return nil, types.TypeMismatchf("%s columns cannot be converted to arrow", kind)
}

// Schema returns the arrow schema of a table
func Schema(table *types.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, table.NumColumns())
	for _, f := range table.Schema() {
		dt, err := arrowType(f.Kind)
		if err != nil {
			return nil, err.(*types.Error).WithColumn(f.Name)
		}
		fields = append(fields, arrow.Field{
			Name:     f.Name,
			Type:     dt,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{KindMetadataKey}, []string{f.Kind.String()}),
		})
	}
	return arrow.NewSchema(fields, nil), nil
}

// ToRecord copies a table into an arrow record. A nil mem uses the Go
// allocator. The caller must Release the record.
func ToRecord(table *types.Table, mem memory.Allocator) (arrow.Record, error) {
	if table == nil {
		return nil, types.InvalidArgumentf("table cannot be nil")
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema, err := Schema(table)
	if err != nil {
		return nil, err
	}
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, col := range table.Columns() {
		appendColumn(b.Field(i), col)
	}
	return b.NewRecord(), nil
}

func appendColumn(fb array.Builder, col *types.Column) {
	fb.Reserve(col.Len())
	for _, v := range col.Values() {
		if v.IsNull() {
			fb.AppendNull()
			continue
		}
		switch b := fb.(type) {
		case *array.Int64Builder:
			b.Append(v.Int())
		case *array.Float64Builder:
			b.Append(v.Float())
		case *array.BooleanBuilder:
			b.Append(v.Bool())
		case *array.StringBuilder:
			if col.Kind() == types.KindDecimal {
				b.Append(v.Decimal().String())
			} else {
				b.Append(v.Str())
			}
		case *array.TimestampBuilder:
			b.Append(arrow.Timestamp(v.Time().UnixNano()))
		}
	}
}

// FromRecord copies an arrow record into a table. Narrow integer and float
// types widen to int64 and float64; utf8 columns tagged as decimal are parsed.
func FromRecord(rec arrow.Record) (*types.Table, error) {
	if rec == nil {
		return nil, types.InvalidArgumentf("record cannot be nil")
	}
	schema := rec.Schema()
	columns := make([]*types.Column, 0, rec.NumCols())
	for i := 0; i < int(rec.NumCols()); i++ {
		field := schema.Field(i)
		col, err := fromArray(field, rec.Column(i))
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return types.NewTable(columns...)
}

func fieldKind(field arrow.Field) string {
	if idx := field.Metadata.FindKey(KindMetadataKey); idx >= 0 {
		return field.Metadata.Values()[idx]
	}
	return ""
}

func fromArray(field arrow.Field, arr arrow.Array) (*types.Column, error) {
	n := arr.Len()
	values := make([]types.Value, n)
	var kind types.Kind

	switch a := arr.(type) {
	case *array.Int64:
		kind = types.KindInt
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				values[i] = types.Int(a.Value(i))
			}
		}
	case *array.Int32:
		kind = types.KindInt
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				values[i] = types.Int(int64(a.Value(i)))
			}
		}
	case *array.Float64:
		kind = types.KindFloat
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				values[i] = types.Float(a.Value(i))
			}
		}
	case *array.Float32:
		kind = types.KindFloat
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				values[i] = types.Float(float64(a.Value(i)))
			}
		}
	case *array.Boolean:
		kind = types.KindBool
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				values[i] = types.Bool(a.Value(i))
			}
		}
	case *array.String:
		kind = types.KindString
		isDecimal := fieldKind(field) == types.KindDecimal.String()
		if isDecimal {
			kind = types.KindDecimal
		}
		for i := 0; i < n; i++ {
			if !a.IsValid(i) {
				continue
			}
			if !isDecimal {
				// Value 引用 arrow 缓冲区，记录释放后不可再用
				values[i] = types.String(strings.Clone(a.Value(i)))
				continue
			}
			d, err := decimal.NewFromString(a.Value(i))
			if err != nil {
				return nil, types.TypeMismatchf("row %d: invalid decimal %q", i, a.Value(i)).WithColumn(field.Name)
			}
			values[i] = types.Decimal(d)
		}
	case *array.Timestamp:
		kind = types.KindTime
		unit := a.DataType().(*arrow.TimestampType).Unit
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				values[i] = types.Time(a.Value(i).ToTime(unit).In(time.UTC))
			}
		}
	default:
		return nil, types.TypeMismatchf("arrow type %s is not supported", arr.DataType()).WithColumn(field.Name)
	}
	return types.NewColumn(field.Name, kind, values)
}
