package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errors returned by the order session. All of them are recoverable and are
// reported to the operator at the boundary of the failing call.
var (
	ErrEmptyOrder             = errors.New("no items in order")
	ErrInsufficientFunds      = errors.New("insufficient cash received")
	ErrForbidden              = errors.New("only managers can process refunds")
	ErrAuthentication         = errors.New("incorrect manager credential")
	ErrPaymentNotStarted      = errors.New("payment has not been started")
	ErrInvalidState           = errors.New("operation not allowed in current payment state")
	ErrInvalidMethod          = errors.New("invalid payment method")
	ErrInvalidTip             = errors.New("tip must be >= 0")
	ErrInvalidAmount          = errors.New("amount must be >= 0")
	ErrNoReceipt              = errors.New("no receipt available")
	ErrNoRefundChallenge      = errors.New("no refund authorization in progress")
	ErrAuthorizationPending   = errors.New("card authorization in progress")
	ErrAuthorizationCancelled = errors.New("card authorization cancelled")
	ErrCardDeclined           = errors.New("card declined")
	ErrSessionNotFound        = errors.New("session not found")
)

// InsufficientFundsError reports a cash tender below the amount due.
// It matches ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Due      decimal.Decimal
	Received decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient cash received: due %s, received %s",
		e.Due.StringFixed(2), e.Received.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall is the amount still missing.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Due.Sub(e.Received)
}
