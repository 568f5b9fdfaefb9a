package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Msg: msg}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}

var ErrBadPaymentData = NewValidationError("Invalid payment: body of request contained bad or no data")
var ErrNoUpdateData = NewValidationError("No data provided for the payment update")
var ErrBadActionData = NewValidationError("Invalid payment action: bad or missing data")

func NewPaymentNotFoundError(paymentID int) error {
	return &NotFoundError{Msg: fmt.Sprintf("Payment with id: %d was not found", paymentID)}
}
