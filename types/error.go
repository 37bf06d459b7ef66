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
	"strings"
)

// ErrorType 定义错误类型
type ErrorType int

const (
	ErrorTypeInvalidArgument ErrorType = iota + 1
	ErrorTypeColumnNotFound
	ErrorTypeTypeMismatch
	ErrorTypeSchemaConflict
	ErrorTypeCancelled
	ErrorTypeOverflow
)

// String returns the upper-case name used in error messages
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrorTypeColumnNotFound:
		return "COLUMN_NOT_FOUND"
	case ErrorTypeTypeMismatch:
		return "TYPE_MISMATCH"
	case ErrorTypeSchemaConflict:
		return "SCHEMA_CONFLICT"
	case ErrorTypeCancelled:
		return "CANCELLED"
	case ErrorTypeOverflow:
		return "OVERFLOW"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Sentinels for errors.Is. Any *Error of the same type matches them.
var (
	ErrInvalidArgument = &Error{Type: ErrorTypeInvalidArgument}
	ErrColumnNotFound  = &Error{Type: ErrorTypeColumnNotFound}
	ErrTypeMismatch    = &Error{Type: ErrorTypeTypeMismatch}
	ErrSchemaConflict  = &Error{Type: ErrorTypeSchemaConflict}
	ErrCancelled       = &Error{Type: ErrorTypeCancelled}
	ErrOverflow        = &Error{Type: ErrorTypeOverflow}
)

// Error is the structured error returned by spec construction and by apply
type Error struct {
	Type    ErrorType
	Message string
	// Column is the offending column, if any
	Column string
	// Spec describes the aggregation that failed, if any
	Spec  string
	Cause error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[%s]", e.Type))
	if e.Message != "" {
		builder.WriteString(" ")
		builder.WriteString(e.Message)
	}
	if e.Column != "" {
		builder.WriteString(fmt.Sprintf(" (column '%s')", e.Column))
	}
	if e.Spec != "" {
		builder.WriteString(fmt.Sprintf(" in %s", e.Spec))
	}
	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}
	return builder.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any error of the same type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithColumn returns a copy annotated with the column name
func (e *Error) WithColumn(column string) *Error {
	c := *e
	c.Column = column
	return &c
}

// WithSpec returns a copy annotated with the spec description
func (e *Error) WithSpec(spec string) *Error {
	c := *e
	c.Spec = spec
	return &c
}

// NewError creates an error of the given type
func NewError(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgumentf(format string, args ...interface{}) *Error {
	return NewError(ErrorTypeInvalidArgument, format, args...)
}

func TypeMismatchf(format string, args ...interface{}) *Error {
	return NewError(ErrorTypeTypeMismatch, format, args...)
}

// ColumnNotFound reports a reference to a column missing from the schema
func ColumnNotFound(column string) *Error {
	return &Error{Type: ErrorTypeColumnNotFound, Message: "column not found", Column: column}
}

// SchemaConflict reports a duplicate column name
func SchemaConflict(column string) *Error {
	return &Error{Type: ErrorTypeSchemaConflict, Message: "duplicate column name", Column: column}
}

// Cancelled wraps the context error of an interrupted run
func Cancelled(cause error) *Error {
	return &Error{Type: ErrorTypeCancelled, Message: "aggregation cancelled", Cause: cause}
}

func Overflowf(format string, args ...interface{}) *Error {
	return NewError(ErrorTypeOverflow, format, args...)
}
