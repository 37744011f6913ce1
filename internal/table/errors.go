package table

import (
	"errors"
	"fmt"
)

// Sentinel errors for table loading and querying. Callers match them with
// errors.Is; the concrete value is usually an *Error carrying the subject.
var (
	ErrNotFound      = errors.New("not found")
	ErrParseFailure  = errors.New("parse failure")
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyTable    = errors.New("empty table")
	ErrTypeMismatch  = errors.New("column type mismatch")
)

// Kind classifies an Error.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindParseFailure
	KindMissingColumn
	KindEmptyTable
	KindTypeMismatch
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindParseFailure:
		return "parse_failure"
	case KindMissingColumn:
		return "missing_column"
	case KindEmptyTable:
		return "empty_table"
	case KindTypeMismatch:
		return "type_mismatch"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindParseFailure:
		return ErrParseFailure
	case KindMissingColumn:
		return ErrMissingColumn
	case KindEmptyTable:
		return ErrEmptyTable
	case KindTypeMismatch:
		return ErrTypeMismatch
	default:
		return nil
	}
}

// Error is a classified table error. Subject names the path, column or
// identifier the error is about.
type Error struct {
	Kind    Kind
	Subject string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Subject)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFoundError creates a not found error for subject.
func NotFoundError(subject string, cause error) *Error {
	return &Error{Kind: KindNotFound, Subject: subject, Cause: cause}
}

// ParseError creates a parse failure for subject.
func ParseError(subject string, cause error) *Error {
	return &Error{Kind: KindParseFailure, Subject: subject, Cause: cause}
}

// MissingColumnError creates a missing column error.
func MissingColumnError(column string) *Error {
	return &Error{Kind: KindMissingColumn, Subject: column}
}

// EmptyTableError creates an empty table error.
func EmptyTableError(subject string) *Error {
	return &Error{Kind: KindEmptyTable, Subject: subject}
}

// TypeMismatchError creates a type mismatch error for column.
func TypeMismatchError(column string, want, got ColumnType) *Error {
	return &Error{
		Kind:    KindTypeMismatch,
		Subject: column,
		Cause:   fmt.Errorf("want %s, column is %s", want, got),
	}
}

// KindOf returns the kind of err, or 0 when err is not a table error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	for _, k := range []Kind{KindNotFound, KindParseFailure, KindMissingColumn, KindEmptyTable, KindTypeMismatch} {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return 0
}
