// Package errors provides structured error types for the Meridian system.
// All errors include a category, code, and message for consistent handling
// across components; DDL errors are surfaced verbatim as statement failures.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryName     ErrorCategory = "NAME"
	ErrCategoryType     ErrorCategory = "TYPE"
	ErrCategorySchema   ErrorCategory = "SCHEMA"
	ErrCategoryLiteral  ErrorCategory = "LITERAL"
	ErrCategoryParse    ErrorCategory = "PARSE"
	ErrCategoryCatalog  ErrorCategory = "CATALOG"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Name codes
	CodeInvalidName = "INVALID_NAME"

	// Type resolution codes
	CodeUnknownType       = "UNKNOWN_TYPE"
	CodeInvalidTypeParams = "INVALID_TYPE_PARAMS"

	// Schema rule codes
	CodeMissingNameOrType   = "MISSING_NAME_OR_TYPE"
	CodeKeyTypeConflict     = "KEY_TYPE_CONFLICT"
	CodeMissingAggregate    = "MISSING_AGGREGATE"
	CodeKeyAggregate        = "KEY_AGGREGATE"
	CodeIncompatibleAgg     = "INCOMPATIBLE_AGGREGATE"
	CodeFloatKey            = "FLOAT_KEY"
	CodeForcedDefault       = "FORCED_DEFAULT"
	CodeNullDefaultConflict = "NULL_DEFAULT_CONFLICT"
	CodeDuplicateColumn     = "DUPLICATE_COLUMN"
	CodeUnknownKeyColumn    = "UNKNOWN_KEY_COLUMN"
	CodeEmptyTable          = "EMPTY_TABLE"
	CodeMissingKey          = "MISSING_KEY"

	// Literal codes
	CodeInvalidInt      = "INVALID_INT"
	CodeInvalidLargeInt = "INVALID_LARGEINT"
	CodeInvalidFloat    = "INVALID_FLOAT"
	CodePrecisionLoss   = "PRECISION_LOSS"
	CodeInvalidDecimal  = "INVALID_DECIMAL"
	CodeDecimalOverflow = "DECIMAL_OVERFLOW"
	CodeInvalidDate     = "INVALID_DATE"
	CodeValueTooLong    = "VALUE_TOO_LONG"
	CodeInvalidBool     = "INVALID_BOOL"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"

	// Parse codes
	CodeSyntaxError       = "SYNTAX_ERROR"
	CodeUnsupportedSyntax = "UNSUPPORTED_SYNTAX"

	// Catalog codes
	CodeTableExists   = "TABLE_EXISTS"
	CodeTableNotFound = "TABLE_NOT_FOUND"
	CodeCatalogIO     = "CATALOG_IO"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// MeridianError is the structured error type used throughout the system.
type MeridianError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *MeridianError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *MeridianError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *MeridianError) Is(target error) bool {
	var t *MeridianError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new MeridianError.
func New(category ErrorCategory, code, message string) *MeridianError {
	return &MeridianError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Newf creates a new MeridianError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *MeridianError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new MeridianError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *MeridianError {
	return &MeridianError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a MeridianError.
func GetCategory(err error) ErrorCategory {
	var me *MeridianError
	if errors.As(err, &me) {
		return me.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a MeridianError.
func GetCode(err error) string {
	var me *MeridianError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// UserMessage returns the human-readable message without the category/code
// prefix, suitable for direct display as a DDL failure.
func UserMessage(err error) string {
	var me *MeridianError
	if errors.As(err, &me) {
		return me.Message
	}
	return err.Error()
}

// Convenience constructors for common errors.

func NewNameError(message string) *MeridianError {
	return New(ErrCategoryName, CodeInvalidName, message)
}

func NewSchemaError(code, message string) *MeridianError {
	return New(ErrCategorySchema, code, message)
}

func NewLiteralError(code, message string) *MeridianError {
	return New(ErrCategoryLiteral, code, message)
}

func NewParseError(message string) *MeridianError {
	return New(ErrCategoryParse, CodeSyntaxError, message)
}

func NewCatalogError(code, message string, cause error) *MeridianError {
	return Wrap(ErrCategoryCatalog, code, message, cause)
}

func NewStorageError(code, message string, cause error) *MeridianError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *MeridianError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
