// Package processor simulates the external card processor. Authorization
// is a cancellable operation with explicit approve and decline outcomes.
package processor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDeclined      = errors.New("card declined by processor")
	ErrInvalidAmount = errors.New("authorization amount must be > 0")
)

// Authorization is an approved card charge.
type Authorization struct {
	Code       string          `json:"code"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedAt time.Time       `json:"approved_at"`
}

// Simulated approves every charge after a fixed delay, unless the amount
// exceeds the configured decline limit.
type Simulated struct {
	delay        time.Duration
	declineAbove decimal.Decimal
}

// NewSimulated returns a processor that waits delay before settling.
// A zero declineAbove disables declines.
func NewSimulated(delay time.Duration, declineAbove decimal.Decimal) *Simulated {
	return &Simulated{delay: delay, declineAbove: declineAbove}
}

// Authorize blocks for the configured delay or until ctx is done.
func (p *Simulated) Authorize(ctx context.Context, amount decimal.Decimal) (Authorization, error) {
	if !amount.IsPositive() {
		return Authorization{}, ErrInvalidAmount
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Authorization{}, ctx.Err()
	case <-timer.C:
	}

	if !p.declineAbove.IsZero() && amount.GreaterThan(p.declineAbove) {
		return Authorization{}, ErrDeclined
	}

	return Authorization{
		Code:       strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		Amount:     amount,
		ApprovedAt: time.Now(),
	}, nil
}
