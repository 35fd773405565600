package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/coqui-pos/api/internal/auth"
)

// RequestRefund opens the manager credential challenge for the settled
// receipt. A non-privileged role never reaches the challenge.
func (s *OrderSession) RequestRefund(role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.receipt == nil {
		return ErrNoReceipt
	}
	if !role.Privileged() {
		return ErrForbidden
	}
	s.refundChallenge = true
	return nil
}

// CancelRefund closes an open credential challenge. The receipt stays.
func (s *OrderSession) CancelRefund() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refundChallenge = false
}

// SubmitCredential checks credential against the stored manager credential.
// A mismatch leaves the challenge open for another attempt. A match emits
// RefundCompleted for the receipt's grand total and resets the session.
func (s *OrderSession) SubmitCredential(ctx context.Context, role auth.Role, credential string) (*RefundCompleted, error) {
	s.mu.Lock()
	if !s.refundChallenge || s.receipt == nil {
		s.mu.Unlock()
		return nil, ErrNoRefundChallenge
	}
	if !role.Privileged() {
		s.mu.Unlock()
		return nil, ErrForbidden
	}
	receipt := s.receipt
	s.mu.Unlock()

	if err := s.deps.Verifier.Verify(ctx, auth.RoleManager, credential); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return nil, ErrAuthentication
		case errors.Is(err, auth.ErrNoCredential):
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("verify manager credential: %w", err)
	}

	s.mu.Lock()
	// the session may have been reset or refunded while verifying
	if s.receipt != receipt || !s.refundChallenge {
		s.mu.Unlock()
		return nil, ErrNoRefundChallenge
	}
	ev := RefundCompleted{
		OrderID:    receipt.OrderID,
		SessionID:  s.id,
		Amount:     receipt.Total,
		RefundedBy: role,
		Timestamp:  s.deps.Now(),
	}
	s.resetLocked()
	s.mu.Unlock()

	if err := s.deps.Events.RefundCompleted(ctx, ev); err != nil {
		log.Printf("ERROR: emit refund for order %s: %v", ev.OrderID, err)
	}
	s.emitCleared(ctx)
	return &ev, nil
}
