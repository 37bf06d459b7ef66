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
	"bytes"
	"encoding/binary"
	"math"
)

// Field describes one column of a table schema
type Field struct {
	Name string
	Kind Kind
}

// Table is an ordered set of equally long columns with unique names
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable creates a table. Column names must be unique and all columns must
// have the same length.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, InvalidArgumentf("column %d is nil", i)
		}
		if _, exists := t.index[c.Name()]; exists {
			return nil, SchemaConflict(c.Name())
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, InvalidArgumentf("column has %d rows, expected %d", c.Len(), t.rows).WithColumn(c.Name())
		}
		t.index[c.Name()] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error
func MustTable(columns ...*Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) NumRows() int {
	return t.rows
}

func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Columns returns the columns in table order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

func (t *Table) Schema() []Field {
	fields := make([]Field, len(t.columns))
	for i, c := range t.columns {
		fields[i] = Field{Name: c.Name(), Kind: c.Kind()}
	}
	return fields
}

// Row returns a read-only view of row i
func (t *Table) Row(i int) Row {
	return Row{table: t, index: i}
}

// Select builds a new table from the given rows and columns. With no names
// all columns are kept.
func (t *Table) Select(rows []int, names ...string) (*Table, error) {
	if len(names) == 0 {
		names = t.ColumnNames()
	}
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, ColumnNotFound(name)
		}
		columns = append(columns, c.take(rows))
	}
	if len(columns) == 0 {
		return &Table{index: map[string]int{}, rows: len(rows)}, nil
	}
	return NewTable(columns...)
}

// Equal compares schema and content
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	a, err := t.MarshalBinary()
	if err != nil {
		return false
	}
	b, err := other.MarshalBinary()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// MarshalBinary produces a deterministic encoding of the table. Two tables
// with the same schema and values always encode to the same bytes.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	t.encode(&buf)
	return buf.Bytes(), nil
}

func (t *Table) encode(buf *bytes.Buffer) {
	writeUvarint(buf, uint64(t.rows))
	writeUvarint(buf, uint64(len(t.columns)))
	for _, c := range t.columns {
		writeString(buf, c.Name())
		buf.WriteByte(byte(c.Kind()))
		for _, v := range c.values {
			encodeValue(buf, v)
		}
	}
}

func encodeValue(buf *bytes.Buffer, v Value) {
	buf.WriteByte(byte(v.Kind()))
	if v.IsNull() {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	switch v.Kind() {
	case KindInt:
		var tmp [binary.MaxVarintLen64]byte
		n := binary.PutVarint(tmp[:], v.Int())
		buf.Write(tmp[:n])
	case KindFloat:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v.Float()))
		buf.Write(tmp[:])
	case KindVector:
		items := v.Vector()
		writeUvarint(buf, uint64(len(items)))
		for _, item := range items {
			encodeValue(buf, item)
		}
	case KindTable:
		v.Table().encode(buf)
	default:
		writeString(buf, v.Key())
	}
}

func writeUvarint(buf *bytes.Buffer, x uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	buf.Write(tmp[:n])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

// Row is a read-only view over one row of a table
type Row struct {
	table *Table
	index int
}

// Index returns the row number within the table
func (r Row) Index() int {
	return r.index
}

// Get returns the value of the named column
func (r Row) Get(name string) (Value, bool) {
	c, ok := r.table.Column(name)
	if !ok {
		return Value{}, false
	}
	return c.Value(r.index), true
}

// Values returns the row values in column order
func (r Row) Values() []Value {
	values := make([]Value, len(r.table.columns))
	for i, c := range r.table.columns {
		values[i] = c.Value(r.index)
	}
	return values
}

// Map returns the row as column name to Go value, nulls map to nil
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.table.columns))
	for _, c := range r.table.columns {
		m[c.Name()] = c.Value(r.index).Interface()
	}
	return m
}
