package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorCode classifies domain failures so callers can map them to transport
// semantics without string matching.
type ErrorCode string

const (
	ErrorValidation          ErrorCode = "validation"
	ErrorNotFound            ErrorCode = "not_found"
	ErrorVersionConflict     ErrorCode = "version_conflict"
	ErrorInsufficientBalance ErrorCode = "insufficient_balance"
)

// Error is the domain error type. Field names the input field or record that
// caused the failure.
type Error struct {
	Code  ErrorCode `json:"code"`
	Field string    `json:"field,omitempty"`
	Msg   string    `json:"message"`
}

func (e Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// NewValidation reports malformed input on the given field.
func NewValidation(field, msg string) error {
	return Error{Code: ErrorValidation, Field: field, Msg: msg}
}

// NewNotFound reports a missing beneficio id.
func NewNotFound(field string, id int64) error {
	return Error{Code: ErrorNotFound, Field: field, Msg: fmt.Sprintf("beneficio not found: %d", id)}
}

// NewConflict reports an optimistic-concurrency violation on an update.
func NewConflict(id, expected, current int64) error {
	return Error{
		Code:  ErrorVersionConflict,
		Field: "version",
		Msg:   fmt.Sprintf("version conflict on beneficio %d: expected %d, current %d", id, expected, current),
	}
}

// NewInsufficientBalance reports a transfer source that lacks funds.
func NewInsufficientBalance(id int64, available, required decimal.Decimal) error {
	return Error{
		Code:  ErrorInsufficientBalance,
		Field: "fromId",
		Msg:   fmt.Sprintf("insufficient balance on beneficio %d: available %s, required %s", id, available, required),
	}
}

// CodeOf extracts the domain error code, or "" for non-domain errors.
func CodeOf(err error) ErrorCode {
	var de Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
