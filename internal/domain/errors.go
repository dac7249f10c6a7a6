package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrEmptyCart      = errors.New("empty cart")
	ErrPaymentGateway = errors.New("payment gateway error")
	ErrNotConfirmed   = errors.New("payment not confirmed")
)

// InvalidTransitionError попытка перевести платеж из одного конечного статуса
// в другой. Сигнализирует о проблеме целостности данных выше по потоку,
// состояние леджера при этом не меняется.
type InvalidTransitionError struct {
	PaymentID int64
	From      PaymentStatusType
	To        PaymentStatusType
}

func NewInvalidTransitionError(paymentID int64, from, to PaymentStatusType) error {
	return &InvalidTransitionError{PaymentID: paymentID, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf(
		"invalid status transition %s -> %s for payment with id %d",
		e.From,
		e.To,
		e.PaymentID,
	)
}
