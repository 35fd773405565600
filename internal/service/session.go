package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/cart"
	"github.com/coqui-pos/api/internal/catalog"
	"github.com/coqui-pos/api/internal/enum"
	"github.com/coqui-pos/api/internal/orderid"
	"github.com/coqui-pos/api/internal/pricing"
	"github.com/coqui-pos/api/internal/processor"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardProcessor authorizes card charges. Authorize must return promptly
// once ctx is done.
type CardProcessor interface {
	Authorize(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error)
}

// OrderIDGenerator issues unique order IDs at settlement time.
type OrderIDGenerator interface {
	Next() string
}

// SessionWatcher is told about session changes the caller of an operation
// cannot report itself, such as a card authorization starting.
// Satisfied by *ws.Display.
type SessionWatcher interface {
	SessionChanged(ctx context.Context, v View) error
}

// Deps are the collaborators shared by every order session. Unset fields
// get working defaults: an instant simulated processor, snowflake node 0
// order IDs, no-op sinks and a verifier that rejects every credential.
type Deps struct {
	Calculator pricing.Calculator
	Processor  CardProcessor
	Receipts   ReceiptSink
	Events     EventSink
	Watcher    SessionWatcher
	Verifier   auth.CredentialVerifier
	OrderIDs   OrderIDGenerator
	Now        func() time.Time
}

// Payment is the state of an open payment flow.
type Payment struct {
	Method       enum.PaymentMethod `json:"method"`
	TipPercent   decimal.Decimal    `json:"tip_percent"`
	CustomTip    *decimal.Decimal   `json:"custom_tip"`
	CashReceived *decimal.Decimal   `json:"cash_received"`
	Status       enum.PaymentStatus `json:"status"`
}

// View is a point-in-time copy of a session for display.
type View struct {
	SessionID       uuid.UUID        `json:"session_id"`
	Items           []cart.LineItem  `json:"items"`
	Pricing         pricing.Snapshot `json:"pricing"`
	AmountDue       decimal.Decimal  `json:"amount_due"`
	Payment         *Payment         `json:"payment"`
	Authorizing     bool             `json:"authorizing"`
	RefundChallenge bool             `json:"refund_challenge"`
	Receipt         *Receipt         `json:"receipt"`
}

// OrderSession owns one terminal's cart and its payment flow. The payment
// moves SELECTING -> COLLECTING -> COMPLETED; GoBack returns to SELECTING
// and Reset discards everything.
//
// While a card authorization is in flight the session lock is released and
// every transition other than GoBack, CancelPayment and Reset is refused
// with ErrAuthorizationPending.
type OrderSession struct {
	id   uuid.UUID
	deps Deps

	mu              sync.Mutex
	cart            *cart.Cart
	payment         *Payment
	receipt         *Receipt
	refundChallenge bool
	authorizing     bool
	cancelAuth      context.CancelFunc
	// generation is bumped whenever an in-flight authorization is abandoned
	generation uint64
}

// NewOrderSession creates an empty session.
func NewOrderSession(id uuid.UUID, deps Deps) *OrderSession {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Receipts == nil {
		deps.Receipts = nopSink{}
	}
	if deps.Events == nil {
		deps.Events = nopSink{}
	}
	if deps.Watcher == nil {
		deps.Watcher = nopSink{}
	}
	if deps.Calculator == (pricing.Calculator{}) {
		deps.Calculator = pricing.Default()
	}
	if deps.Processor == nil {
		deps.Processor = processor.NewSimulated(0, decimal.Zero)
	}
	if deps.Verifier == nil {
		deps.Verifier = noCredentials{}
	}
	if deps.OrderIDs == nil {
		deps.OrderIDs = defaultOrderIDs()
	}
	return &OrderSession{id: id, deps: deps, cart: cart.New()}
}

func (s *OrderSession) ID() uuid.UUID { return s.id }

// --- Cart ---

func (s *OrderSession) AddItem(item catalog.MenuItem) error {
	return s.mutateCart(func(c *cart.Cart) { c.AddItem(item) })
}

func (s *OrderSession) UpdateQuantity(itemID string, quantity int) error {
	return s.mutateCart(func(c *cart.Cart) { c.UpdateQuantity(itemID, quantity) })
}

func (s *OrderSession) RemoveItem(itemID string) error {
	return s.mutateCart(func(c *cart.Cart) { c.RemoveItem(itemID) })
}

// ClearCart empties the cart. Confirmation is the caller's concern.
func (s *OrderSession) ClearCart() error {
	return s.mutateCart(func(c *cart.Cart) { c.Clear() })
}

func (s *OrderSession) mutateCart(fn func(c *cart.Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authorizing {
		return ErrAuthorizationPending
	}
	fn(s.cart)
	return nil
}

// Pricing computes a fresh snapshot from the cart and the current tip input.
func (s *OrderSession) Pricing() pricing.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pricingLocked()
}

func (s *OrderSession) pricingLocked() pricing.Snapshot {
	tipPercent := decimal.Zero
	var customTip *decimal.Decimal
	if s.payment != nil {
		tipPercent = s.payment.TipPercent
		customTip = s.payment.CustomTip
	}
	return s.deps.Calculator.Compute(s.cart.Subtotal(), tipPercent, customTip)
}

// View returns a copy of the session state.
func (s *OrderSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *OrderSession) viewLocked() View {
	snap := s.pricingLocked()
	v := View{
		SessionID:       s.id,
		Items:           s.cart.Items(),
		Pricing:         snap,
		AmountDue:       snap.AmountDue(),
		Authorizing:     s.authorizing,
		RefundChallenge: s.refundChallenge,
		Receipt:         s.receipt,
	}
	if s.payment != nil {
		p := *s.payment
		v.Payment = &p
	}
	return v
}

// --- Payment flow ---

// BeginPayment opens the payment flow. An empty cart is refused before any
// payment state is created. Calling it on an open flow is a no-op.
func (s *OrderSession) BeginPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.authorizing {
		return ErrAuthorizationPending
	}
	if s.payment != nil {
		if s.payment.Status == enum.PaymentStatusCompleted {
			return fmt.Errorf("%w: payment already completed", ErrInvalidState)
		}
		return nil
	}
	if s.cart.IsEmpty() {
		return ErrEmptyOrder
	}
	s.payment = &Payment{Status: enum.PaymentStatusSelecting}
	return nil
}

// CancelPayment closes an unsettled payment flow and keeps the cart.
func (s *OrderSession) CancelPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.payment == nil {
		return nil
	}
	if s.payment.Status == enum.PaymentStatusCompleted {
		return fmt.Errorf("%w: payment already completed", ErrInvalidState)
	}
	s.abandonAuthLocked()
	s.payment = nil
	return nil
}

// SetTipPercent selects a percentage tip and clears any custom amount.
func (s *OrderSession) SetTipPercent(percent decimal.Decimal) error {
	if percent.IsNegative() {
		return ErrInvalidTip
	}
	return s.updateTip(func(p *Payment) {
		p.TipPercent = percent
		p.CustomTip = nil
	})
}

// SetCustomTip sets a fixed tip amount and clears the percentage.
func (s *OrderSession) SetCustomTip(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidTip
	}
	return s.updateTip(func(p *Payment) {
		p.CustomTip = &amount
		p.TipPercent = decimal.Zero
	})
}

func (s *OrderSession) updateTip(fn func(p *Payment)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		return err
	}
	fn(s.payment)
	return nil
}

// ChooseMethod picks cash or card and moves the flow to COLLECTING.
func (s *OrderSession) ChooseMethod(method enum.PaymentMethod) error {
	if !method.Valid() {
		return ErrInvalidMethod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		return err
	}
	if s.payment.Status != enum.PaymentStatusSelecting {
		return fmt.Errorf("%w: method already chosen", ErrInvalidState)
	}
	s.payment.Method = method
	s.payment.Status = enum.PaymentStatusCollecting
	return nil
}

// GoBack clears the chosen method and returns to SELECTING. It cancels a
// card authorization in flight.
func (s *OrderSession) GoBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.payment == nil {
		return ErrPaymentNotStarted
	}
	if s.payment.Status == enum.PaymentStatusCompleted {
		return fmt.Errorf("%w: payment already completed", ErrInvalidState)
	}
	s.abandonAuthLocked()
	s.payment.Method = enum.PaymentMethodUnset
	s.payment.CashReceived = nil
	s.payment.Status = enum.PaymentStatusSelecting
	return nil
}

// SubmitCash settles with cash. A tender below the amount due is refused
// with *InsufficientFundsError and the session stays in COLLECTING.
func (s *OrderSession) SubmitCash(ctx context.Context, received decimal.Decimal) (*Receipt, error) {
	if received.IsNegative() {
		return nil, ErrInvalidAmount
	}

	r, err := func() (*Receipt, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.collectingLocked(enum.PaymentMethodCash); err != nil {
			return nil, err
		}
		snap := s.pricingLocked()
		due := snap.AmountDue()
		change := received.Sub(due)
		if change.IsNegative() {
			return nil, &InsufficientFundsError{Due: due, Received: received}
		}
		return s.completeLocked(snap, s.cart.Items(), &received, &change, nil), nil
	}()
	if err != nil {
		return nil, err
	}

	s.emitReceipt(ctx, r)
	return r, nil
}

// SubmitCard authorizes the amount due with the card processor. The price
// and line items are captured before the authorization starts, so the
// receipt reflects exactly what was charged.
func (s *OrderSession) SubmitCard(ctx context.Context) (*Receipt, error) {
	s.mu.Lock()
	if err := s.collectingLocked(enum.PaymentMethodCard); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snap := s.pricingLocked()
	items := s.cart.Items()

	// nothing to charge
	if snap.AmountDue().IsZero() {
		r := s.completeLocked(snap, items, nil, nil, nil)
		s.mu.Unlock()
		s.emitReceipt(ctx, r)
		return r, nil
	}

	authCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.authorizing = true
	s.cancelAuth = cancel
	gen := s.generation
	started := s.viewLocked()
	s.mu.Unlock()

	if err := s.deps.Watcher.SessionChanged(ctx, started); err != nil {
		log.Printf("ERROR: notify authorizing for session %s: %v", s.id, err)
	}

	approval, authErr := s.deps.Processor.Authorize(authCtx, snap.AmountDue())

	r, err := func() (*Receipt, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if gen != s.generation {
			return nil, ErrAuthorizationCancelled
		}
		s.authorizing = false
		s.cancelAuth = nil

		if authErr != nil {
			switch {
			case errors.Is(authErr, context.Canceled), errors.Is(authErr, context.DeadlineExceeded):
				return nil, fmt.Errorf("%w: %w", ErrAuthorizationCancelled, authErr)
			case errors.Is(authErr, processor.ErrDeclined):
				return nil, fmt.Errorf("%w: %w", ErrCardDeclined, authErr)
			}
			return nil, fmt.Errorf("authorize card: %w", authErr)
		}

		code := approval.Code
		return s.completeLocked(snap, items, nil, nil, &code), nil
	}()
	if err != nil {
		return nil, err
	}

	s.emitReceipt(ctx, r)
	return r, nil
}

// Receipt returns the receipt of the settled payment, if any.
func (s *OrderSession) Receipt() (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receipt == nil {
		return nil, ErrNoReceipt
	}
	return s.receipt, nil
}

// Reprint sends the existing receipt to the sink again, unchanged.
func (s *OrderSession) Reprint(ctx context.Context) (*Receipt, error) {
	r, err := s.Receipt()
	if err != nil {
		return nil, err
	}
	s.emitReceipt(ctx, r)
	return r, nil
}

// PrintKitchenTicket sends the current cart to the kitchen.
func (s *OrderSession) PrintKitchenTicket(ctx context.Context) (*KitchenTicket, error) {
	s.mu.Lock()
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return nil, ErrEmptyOrder
	}
	ticket := KitchenTicket{
		SessionID: s.id,
		Items:     s.cart.Items(),
		Timestamp: s.deps.Now(),
	}
	s.mu.Unlock()

	if err := s.deps.Events.KitchenTicket(ctx, ticket); err != nil {
		log.Printf("ERROR: emit kitchen ticket for session %s: %v", s.id, err)
	}
	return &ticket, nil
}

// Reset discards the cart, the payment flow and any receipt. It is valid at
// any time and cancels a card authorization in flight.
func (s *OrderSession) Reset(ctx context.Context) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.emitCleared(ctx)
}

// --- Locked helpers ---

func (s *OrderSession) resetLocked() {
	s.abandonAuthLocked()
	s.cart.Clear()
	s.payment = nil
	s.receipt = nil
	s.refundChallenge = false
}

func (s *OrderSession) abandonAuthLocked() {
	if !s.authorizing {
		return
	}
	s.cancelAuth()
	s.cancelAuth = nil
	s.authorizing = false
	s.generation++
}

// openLocked checks that a payment flow exists and can still change.
func (s *OrderSession) openLocked() error {
	if s.payment == nil {
		return ErrPaymentNotStarted
	}
	if s.authorizing {
		return ErrAuthorizationPending
	}
	if s.payment.Status == enum.PaymentStatusCompleted {
		return fmt.Errorf("%w: payment already completed", ErrInvalidState)
	}
	return nil
}

func (s *OrderSession) collectingLocked(method enum.PaymentMethod) error {
	if err := s.openLocked(); err != nil {
		return err
	}
	if s.payment.Status != enum.PaymentStatusCollecting {
		return fmt.Errorf("%w: no payment method chosen", ErrInvalidState)
	}
	if s.payment.Method != method {
		return fmt.Errorf("%w: session is collecting %s", ErrInvalidMethod, s.payment.Method)
	}
	if s.cart.IsEmpty() {
		return ErrEmptyOrder
	}
	return nil
}

// completeLocked synthesizes the receipt from a snapshot taken earlier under
// the same lock, so later cart changes cannot reach it.
func (s *OrderSession) completeLocked(snap pricing.Snapshot, items []cart.LineItem, cash, change *decimal.Decimal, authCode *string) *Receipt {
	r := &Receipt{
		OrderID:           s.deps.OrderIDs.Next(),
		SessionID:         s.id,
		LineItems:         items,
		Subtotal:          snap.Subtotal,
		TaxRate:           snap.TaxRate,
		Tax:               snap.Tax,
		Tip:               snap.TipAmount,
		Total:             snap.GrandTotal,
		AmountPaid:        snap.AmountDue(),
		PaymentMethod:     s.payment.Method,
		CashReceived:      cash,
		Change:            change,
		AuthorizationCode: authCode,
		Timestamp:         s.deps.Now(),
	}
	s.payment.CashReceived = cash
	s.payment.Status = enum.PaymentStatusCompleted
	s.receipt = r
	return r
}

// --- Emission ---

func (s *OrderSession) emitReceipt(ctx context.Context, r *Receipt) {
	if err := s.deps.Receipts.Emit(ctx, r); err != nil {
		log.Printf("ERROR: emit receipt %s: %v", r.OrderID, err)
	}
}

func (s *OrderSession) emitCleared(ctx context.Context) {
	if err := s.deps.Events.OrderCleared(ctx, OrderCleared{SessionID: s.id}); err != nil {
		log.Printf("ERROR: emit order cleared for session %s: %v", s.id, err)
	}
}

type nopSink struct{}

func (nopSink) Emit(context.Context, *Receipt) error                  { return nil }
func (nopSink) RefundCompleted(context.Context, RefundCompleted) error { return nil }
func (nopSink) OrderCleared(context.Context, OrderCleared) error       { return nil }
func (nopSink) KitchenTicket(context.Context, KitchenTicket) error     { return nil }
func (nopSink) SessionChanged(context.Context, View) error             { return nil }

// noCredentials rejects every credential as unconfigured.
type noCredentials struct{}

func (noCredentials) Verify(context.Context, auth.Role, string) error { return auth.ErrNoCredential }

func defaultOrderIDs() OrderIDGenerator {
	g, err := orderid.New(0)
	if err != nil {
		panic(err)
	}
	return g
}
