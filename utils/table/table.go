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

// Package table renders result tables for the console.
package table

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rulego/tableagg/types"
)

func newWriter(w io.Writer, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader(header)
	return tw
}

func footer(w io.Writer, rows int) {
	suffix := "s"
	if rows == 1 {
		suffix = ""
	}
	fmt.Fprintf(w, "(%d row%s)\n", rows, suffix)
}

// Render writes t as a bordered table followed by a row count. Nulls print as
// "null", nested tables as their dimensions.
func Render(w io.Writer, t *types.Table) {
	if t == nil || t.NumColumns() == 0 {
		footer(w, 0)
		return
	}
	tw := newWriter(w, t.ColumnNames())
	for i := 0; i < t.NumRows(); i++ {
		values := t.Row(i).Values()
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = strings.ReplaceAll(v.String(), "\n", `\n`)
		}
		tw.Append(cells)
	}
	tw.Render()
	footer(w, t.NumRows())
}

// String renders t into a string
func String(t *types.Table) string {
	var sb strings.Builder
	Render(&sb, t)
	return sb.String()
}

// Print renders t to stdout
func Print(t *types.Table) {
	Render(os.Stdout, t)
}

// RenderMaps writes rows given as maps, e.g. from Row.Map. Columns follow
// fieldOrder, then the remaining keys sorted by name.
func RenderMaps(w io.Writer, data []map[string]interface{}, fieldOrder []string) {
	if len(data) == 0 {
		footer(w, 0)
		return
	}
	columnSet := make(map[string]bool)
	for _, row := range data {
		for col := range row {
			columnSet[col] = true
		}
	}
	var columns []string
	for _, field := range fieldOrder {
		if columnSet[field] {
			columns = append(columns, field)
			delete(columnSet, field)
		}
	}
	rest := make([]string, 0, len(columnSet))
	for col := range columnSet {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	tw := newWriter(w, columns)
	for _, row := range data {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok {
				if v == nil {
					cells[i] = "null"
				} else {
					cells[i] = fmt.Sprintf("%v", v)
				}
			}
		}
		tw.Append(cells)
	}
	tw.Render()
	footer(w, len(data))
}
