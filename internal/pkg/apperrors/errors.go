// internal/pkg/apperrors/errors.go
package apperrors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure the storefront can report.
type Code string

const (
	CodeEmptyCart                 Code = "EMPTY_CART"
	CodeInvalidAttributeSelection Code = "INVALID_ATTRIBUTE_SELECTION"
	CodeNoMatchingVariant         Code = "NO_MATCHING_VARIANT"
	CodeOutOfStock                Code = "OUT_OF_STOCK"
	CodeInsufficientStock         Code = "INSUFFICIENT_STOCK"
	CodeInvalidTransition         Code = "INVALID_TRANSITION"
	CodeOrderNumberCollision      Code = "ORDER_NUMBER_COLLISION"
	CodeNotFound                  Code = "NOT_FOUND"
	CodeValidation                Code = "VALIDATION_ERROR"
	CodeConflict                  Code = "CONFLICT"
	CodeInternal                  Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeEmptyCart:                 http.StatusUnprocessableEntity,
	CodeInvalidAttributeSelection: http.StatusBadRequest,
	CodeNoMatchingVariant:         http.StatusNotFound,
	CodeOutOfStock:                http.StatusConflict,
	CodeInsufficientStock:         http.StatusConflict,
	CodeInvalidTransition:         http.StatusUnprocessableEntity,
	CodeOrderNumberCollision:      http.StatusInternalServerError,
	CodeNotFound:                  http.StatusNotFound,
	CodeValidation:                http.StatusBadRequest,
	CodeConflict:                  http.StatusConflict,
	CodeInternal:                  http.StatusInternalServerError,
}

// HTTPStatus maps a code to the status the HTTP layer should answer with.
func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a coded error carried across service boundaries.
type Error struct {
	code    Code
	message string
	cause   error
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts a coded error from an error chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code buried in err, or CodeInternal for plain errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	var stock *InsufficientStockError
	if stdErrors.As(err, &stock) {
		return CodeInsufficientStock
	}
	return CodeInternal
}

// InsufficientStockError is the authoritative checkout-time stock failure.
// It identifies the variant that could not be fulfilled so callers can show
// the shopper exactly which line item blocked the order.
type InsufficientStockError struct {
	VariantID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: variant %d has %d available, %d requested",
		CodeInsufficientStock, e.VariantID, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an authoritative stock failure
// and returns the typed error when it is.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var typed *InsufficientStockError
	if stdErrors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}
