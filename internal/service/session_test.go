package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/catalog"
	"github.com/coqui-pos/api/internal/enum"
	"github.com/coqui-pos/api/internal/processor"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

type mockReceiptSink struct {
	mu       sync.Mutex
	payloads [][]byte
	receipts []*Receipt
	err      error
}

func (m *mockReceiptSink) Emit(ctx context.Context, r *Receipt) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, b)
	m.receipts = append(m.receipts, r)
	return m.err
}

func (m *mockReceiptSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.receipts)
}

type mockEventSink struct {
	mu      sync.Mutex
	refunds []RefundCompleted
	cleared []OrderCleared
	tickets []KitchenTicket
}

func (m *mockEventSink) RefundCompleted(ctx context.Context, ev RefundCompleted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds = append(m.refunds, ev)
	return nil
}

func (m *mockEventSink) OrderCleared(ctx context.Context, ev OrderCleared) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, ev)
	return nil
}

func (m *mockEventSink) KitchenTicket(ctx context.Context, t KitchenTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = append(m.tickets, t)
	return nil
}

type mockProcessor struct {
	authorizeFn func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error)
}

func (m *mockProcessor) Authorize(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
	return m.authorizeFn(ctx, amount)
}

type mockVerifier struct {
	verifyFn func(ctx context.Context, role auth.Role, credential string) error
}

func (m *mockVerifier) Verify(ctx context.Context, role auth.Role, credential string) error {
	return m.verifyFn(ctx, role, credential)
}

type mockWatcher struct {
	mu    sync.Mutex
	views []View
}

func (m *mockWatcher) SessionChanged(ctx context.Context, v View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, v)
	return nil
}

func (m *mockWatcher) snapshot() []View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]View(nil), m.views...)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("ORD-%d", g.n)
}

// --- Test helpers ---

var fixedNow = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func menuItem(id, price string) catalog.MenuItem {
	return catalog.MenuItem{
		ID:        id,
		Name:      "Item " + id,
		UnitPrice: d(price),
		Category:  enum.CategoryMainCourse,
	}
}

type testEnv struct {
	session  *OrderSession
	receipts *mockReceiptSink
	events   *mockEventSink
	proc     *mockProcessor
}

func approveAll(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
	return processor.Authorization{Code: "A1B2C3D4", Amount: amount, ApprovedAt: fixedNow}, nil
}

func newTestSession() *testEnv {
	env := &testEnv{
		receipts: &mockReceiptSink{},
		events:   &mockEventSink{},
		proc:     &mockProcessor{authorizeFn: approveAll},
	}
	env.session = NewOrderSession(uuid.New(), Deps{
		Processor: env.proc,
		Receipts:  env.receipts,
		Events:    env.events,
		Verifier: &mockVerifier{verifyFn: func(ctx context.Context, role auth.Role, credential string) error {
			if role == auth.RoleManager && credential == "1234" {
				return nil
			}
			return auth.ErrInvalidCredentials
		}},
		OrderIDs: &seqIDs{},
		Now:      func() time.Time { return fixedNow },
	})
	return env
}

// collecting puts a $10.00 order with a 15% tip into COLLECTING for method.
// The amount due is $12.82.
func (e *testEnv) collecting(t *testing.T, method enum.PaymentMethod) {
	t.Helper()
	if err := e.session.AddItem(menuItem("main-1", "10.00")); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := e.session.BeginPayment(); err != nil {
		t.Fatalf("begin payment: %v", err)
	}
	if err := e.session.SetTipPercent(d("15")); err != nil {
		t.Fatalf("set tip: %v", err)
	}
	if err := e.session.ChooseMethod(method); err != nil {
		t.Fatalf("choose method: %v", err)
	}
}

// --- Tests ---

func TestAddItem_SameItemTwice(t *testing.T) {
	env := newTestSession()
	x := menuItem("bev-1", "3.50")

	_ = env.session.AddItem(x)
	_ = env.session.AddItem(x)

	v := env.session.View()
	if len(v.Items) != 1 {
		t.Fatalf("lines: got %d, want 1", len(v.Items))
	}
	if v.Items[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", v.Items[0].Quantity)
	}
	if !v.Pricing.Subtotal.Equal(d("7.00")) {
		t.Errorf("subtotal: got %s, want 7.00", v.Pricing.Subtotal)
	}
}

func TestBeginPayment_EmptyOrder(t *testing.T) {
	env := newTestSession()

	err := env.session.BeginPayment()
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if env.session.View().Payment != nil {
		t.Error("payment state must not exist after refused BeginPayment")
	}
}

func TestPaymentFlow_RequiresStart(t *testing.T) {
	env := newTestSession()
	_ = env.session.AddItem(menuItem("a", "1"))

	if err := env.session.ChooseMethod(enum.PaymentMethodCash); !errors.Is(err, ErrPaymentNotStarted) {
		t.Errorf("ChooseMethod: expected ErrPaymentNotStarted, got %v", err)
	}
	if err := env.session.SetTipPercent(d("10")); !errors.Is(err, ErrPaymentNotStarted) {
		t.Errorf("SetTipPercent: expected ErrPaymentNotStarted, got %v", err)
	}
	if _, err := env.session.SubmitCash(context.Background(), d("5")); !errors.Is(err, ErrPaymentNotStarted) {
		t.Errorf("SubmitCash: expected ErrPaymentNotStarted, got %v", err)
	}
}

func TestChooseMethod_Invalid(t *testing.T) {
	env := newTestSession()
	_ = env.session.AddItem(menuItem("a", "1"))
	_ = env.session.BeginPayment()

	if err := env.session.ChooseMethod("CHEQUE"); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("expected ErrInvalidMethod, got %v", err)
	}
	if err := env.session.ChooseMethod(enum.PaymentMethodCash); err != nil {
		t.Fatalf("choose cash: %v", err)
	}
	if err := env.session.ChooseMethod(enum.PaymentMethodCard); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second choose: expected ErrInvalidState, got %v", err)
	}
}

func TestTip_CustomAndPercentAreExclusive(t *testing.T) {
	env := newTestSession()
	_ = env.session.AddItem(menuItem("a", "10.00"))
	_ = env.session.BeginPayment()

	_ = env.session.SetTipPercent(d("20"))
	_ = env.session.SetCustomTip(d("3"))
	if tip := env.session.Pricing().TipAmount; !tip.Equal(d("3")) {
		t.Errorf("custom tip: got %s, want 3", tip)
	}

	_ = env.session.SetTipPercent(d("10"))
	if tip := env.session.Pricing().TipAmount; !tip.Equal(d("1.115")) {
		t.Errorf("percent tip: got %s, want 1.115", tip)
	}

	if err := env.session.SetCustomTip(d("-1")); !errors.Is(err, ErrInvalidTip) {
		t.Errorf("negative tip: expected ErrInvalidTip, got %v", err)
	}
}

func TestSubmitCash_Change(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	r, err := env.session.SubmitCash(context.Background(), d("15.00"))
	if err != nil {
		t.Fatalf("submit cash: %v", err)
	}

	if !r.AmountPaid.Equal(d("12.82")) {
		t.Errorf("amount paid: got %s, want 12.82", r.AmountPaid)
	}
	if r.Change == nil || !r.Change.Equal(d("2.18")) {
		t.Errorf("change: got %v, want 2.18", r.Change)
	}
	if !r.Total.Equal(d("12.8225")) {
		t.Errorf("total: got %s, want 12.8225", r.Total)
	}
	if r.PaymentMethod != enum.PaymentMethodCash {
		t.Errorf("method: got %s", r.PaymentMethod)
	}
	if r.OrderID != "ORD-1" {
		t.Errorf("order id: got %s", r.OrderID)
	}
	if env.receipts.count() != 1 {
		t.Errorf("emitted receipts: got %d, want 1", env.receipts.count())
	}
	if v := env.session.View(); v.Payment.Status != enum.PaymentStatusCompleted {
		t.Errorf("status: got %s, want COMPLETED", v.Payment.Status)
	}
}

func TestSubmitCash_ExactAmount(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	r, err := env.session.SubmitCash(context.Background(), d("12.82"))
	if err != nil {
		t.Fatalf("submit cash: %v", err)
	}
	if !r.Change.IsZero() {
		t.Errorf("change: got %s, want 0", r.Change)
	}
}

func TestSubmitCash_Insufficient(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	_, err := env.session.SubmitCash(context.Background(), d("10.00"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	var ife *InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatalf("expected *InsufficientFundsError, got %T", err)
	}
	if !ife.Shortfall().Equal(d("2.82")) {
		t.Errorf("shortfall: got %s, want 2.82", ife.Shortfall())
	}

	v := env.session.View()
	if v.Payment.Status != enum.PaymentStatusCollecting {
		t.Errorf("status: got %s, want COLLECTING", v.Payment.Status)
	}
	if v.Receipt != nil {
		t.Error("no receipt may exist after a refused tender")
	}
	if env.receipts.count() != 0 {
		t.Error("sink must not be called on a refused tender")
	}
}

func TestSubmitCash_WrongMethod(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCard)

	if _, err := env.session.SubmitCash(context.Background(), d("20")); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("expected ErrInvalidMethod, got %v", err)
	}
}

func TestSubmitCash_NegativeAmount(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	if _, err := env.session.SubmitCash(context.Background(), d("-1")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSubmitCash_SinkErrorDoesNotUndoSettlement(t *testing.T) {
	env := newTestSession()
	env.receipts.err = errors.New("printer offline")
	env.collecting(t, enum.PaymentMethodCash)

	r, err := env.session.SubmitCash(context.Background(), d("20"))
	if err != nil {
		t.Fatalf("submit cash: %v", err)
	}
	got, err := env.session.Receipt()
	if err != nil || got != r {
		t.Errorf("receipt should be kept after sink error, got %v, %v", got, err)
	}
}

func TestSubmitCard_Approved(t *testing.T) {
	env := newTestSession()
	var charged decimal.Decimal
	env.proc.authorizeFn = func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
		charged = amount
		return approveAll(ctx, amount)
	}
	env.collecting(t, enum.PaymentMethodCard)

	r, err := env.session.SubmitCard(context.Background())
	if err != nil {
		t.Fatalf("submit card: %v", err)
	}
	if !charged.Equal(d("12.82")) {
		t.Errorf("charged: got %s, want 12.82", charged)
	}
	if r.AuthorizationCode == nil || *r.AuthorizationCode != "A1B2C3D4" {
		t.Errorf("authorization code: got %v", r.AuthorizationCode)
	}
	if r.CashReceived != nil || r.Change != nil {
		t.Error("card receipt must not carry cash fields")
	}
	if env.receipts.count() != 1 {
		t.Errorf("emitted receipts: got %d, want 1", env.receipts.count())
	}
}

func TestSubmitCard_DeclinedStaysCollecting(t *testing.T) {
	env := newTestSession()
	env.proc.authorizeFn = func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
		return processor.Authorization{}, processor.ErrDeclined
	}
	env.collecting(t, enum.PaymentMethodCard)

	_, err := env.session.SubmitCard(context.Background())
	if !errors.Is(err, ErrCardDeclined) {
		t.Fatalf("expected ErrCardDeclined, got %v", err)
	}

	v := env.session.View()
	if v.Payment.Status != enum.PaymentStatusCollecting || v.Authorizing {
		t.Errorf("after decline: status %s, authorizing %v", v.Payment.Status, v.Authorizing)
	}

	env.proc.authorizeFn = approveAll
	if _, err := env.session.SubmitCard(context.Background()); err != nil {
		t.Errorf("retry after decline: %v", err)
	}
}

func TestSubmitCard_ZeroTotalSettlesWithoutProcessor(t *testing.T) {
	env := newTestSession()
	env.proc.authorizeFn = func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
		t.Errorf("processor called for amount %s", amount)
		return processor.Authorization{}, processor.ErrInvalidAmount
	}
	if err := env.session.AddItem(menuItem("water", "0.00")); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := env.session.BeginPayment(); err != nil {
		t.Fatalf("begin payment: %v", err)
	}
	if err := env.session.ChooseMethod(enum.PaymentMethodCard); err != nil {
		t.Fatalf("choose method: %v", err)
	}

	r, err := env.session.SubmitCard(context.Background())
	if err != nil {
		t.Fatalf("submit card: %v", err)
	}
	if !r.AmountPaid.IsZero() || r.AuthorizationCode != nil {
		t.Errorf("receipt: paid %s, code %v", r.AmountPaid, r.AuthorizationCode)
	}
	if env.session.View().Payment.Status != enum.PaymentStatusCompleted {
		t.Error("payment should be completed")
	}
	if env.receipts.count() != 1 {
		t.Errorf("emitted receipts: got %d, want 1", env.receipts.count())
	}
}

func TestSubmitCard_NotifiesWatcherWhenAuthorizing(t *testing.T) {
	env := newTestSession()
	watcher := &mockWatcher{}
	env.session.deps.Watcher = watcher
	env.proc.authorizeFn = func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
		views := watcher.snapshot()
		if len(views) != 1 || !views[0].Authorizing {
			t.Errorf("watcher before authorize: %+v", views)
		}
		return approveAll(ctx, amount)
	}
	env.collecting(t, enum.PaymentMethodCard)

	if _, err := env.session.SubmitCard(context.Background()); err != nil {
		t.Fatalf("submit card: %v", err)
	}
}

func TestNewOrderSession_Defaults(t *testing.T) {
	s := NewOrderSession(uuid.New(), Deps{})
	if err := s.AddItem(menuItem("main-1", "10.00")); err != nil {
		t.Fatalf("add item: %v", err)
	}
	_ = s.BeginPayment()
	_ = s.ChooseMethod(enum.PaymentMethodCard)

	r, err := s.SubmitCard(context.Background())
	if err != nil {
		t.Fatalf("submit card: %v", err)
	}
	if r.OrderID == "" || r.AuthorizationCode == nil {
		t.Errorf("receipt: order %q, code %v", r.OrderID, r.AuthorizationCode)
	}
	if !r.TaxRate.Equal(d("0.115")) {
		t.Errorf("tax rate: got %s", r.TaxRate)
	}
}

// blockingProcessor blocks until ctx is cancelled and reports when it starts.
func blockingProcessor(started chan<- struct{}) func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
	return func(ctx context.Context, amount decimal.Decimal) (processor.Authorization, error) {
		close(started)
		<-ctx.Done()
		return processor.Authorization{}, ctx.Err()
	}
}

func TestSubmitCard_LocksOutTransitions(t *testing.T) {
	env := newTestSession()
	started := make(chan struct{})
	env.proc.authorizeFn = blockingProcessor(started)
	env.collecting(t, enum.PaymentMethodCard)

	done := make(chan error, 1)
	go func() {
		_, err := env.session.SubmitCard(context.Background())
		done <- err
	}()
	<-started

	if err := env.session.AddItem(menuItem("x", "1")); !errors.Is(err, ErrAuthorizationPending) {
		t.Errorf("AddItem: expected ErrAuthorizationPending, got %v", err)
	}
	if err := env.session.SetTipPercent(d("20")); !errors.Is(err, ErrAuthorizationPending) {
		t.Errorf("SetTipPercent: expected ErrAuthorizationPending, got %v", err)
	}
	if _, err := env.session.SubmitCard(context.Background()); !errors.Is(err, ErrAuthorizationPending) {
		t.Errorf("second SubmitCard: expected ErrAuthorizationPending, got %v", err)
	}
	if !env.session.View().Authorizing {
		t.Error("view should report authorizing")
	}

	if err := env.session.GoBack(); err != nil {
		t.Fatalf("go back: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrAuthorizationCancelled) {
			t.Errorf("expected ErrAuthorizationCancelled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("authorization was not cancelled")
	}

	v := env.session.View()
	if v.Payment.Status != enum.PaymentStatusSelecting || v.Payment.Method != enum.PaymentMethodUnset {
		t.Errorf("after go back: status %s, method %q", v.Payment.Status, v.Payment.Method)
	}
	if v.Receipt != nil || env.receipts.count() != 0 {
		t.Error("cancelled authorization must not produce a receipt")
	}
}

func TestSubmitCard_ResetCancels(t *testing.T) {
	env := newTestSession()
	started := make(chan struct{})
	env.proc.authorizeFn = blockingProcessor(started)
	env.collecting(t, enum.PaymentMethodCard)

	done := make(chan error, 1)
	go func() {
		_, err := env.session.SubmitCard(context.Background())
		done <- err
	}()
	<-started

	env.session.Reset(context.Background())

	if err := <-done; !errors.Is(err, ErrAuthorizationCancelled) {
		t.Errorf("expected ErrAuthorizationCancelled, got %v", err)
	}
	v := env.session.View()
	if len(v.Items) != 0 || v.Payment != nil {
		t.Errorf("session not reset: %+v", v)
	}
	if len(env.events.cleared) != 1 {
		t.Errorf("cleared events: got %d, want 1", len(env.events.cleared))
	}
}

func TestSubmitCard_CallerContextCancelled(t *testing.T) {
	env := newTestSession()
	started := make(chan struct{})
	env.proc.authorizeFn = blockingProcessor(started)
	env.collecting(t, enum.PaymentMethodCard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := env.session.SubmitCard(ctx)
		done <- err
	}()
	<-started
	cancel()

	if err := <-done; !errors.Is(err, ErrAuthorizationCancelled) {
		t.Errorf("expected ErrAuthorizationCancelled, got %v", err)
	}
	v := env.session.View()
	if v.Authorizing || v.Payment.Status != enum.PaymentStatusCollecting {
		t.Errorf("after cancel: authorizing %v, status %s", v.Authorizing, v.Payment.Status)
	}
}

func TestGoBack_ClearsMethod(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	if err := env.session.GoBack(); err != nil {
		t.Fatalf("go back: %v", err)
	}
	if err := env.session.ChooseMethod(enum.PaymentMethodCard); err != nil {
		t.Errorf("choose after go back: %v", err)
	}
	if tip := env.session.Pricing().TipAmount; !tip.Equal(d("1.6725")) {
		t.Errorf("tip should survive go back: got %s", tip)
	}
}

func TestCancelPayment_KeepsCart(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	if err := env.session.CancelPayment(); err != nil {
		t.Fatalf("cancel payment: %v", err)
	}
	v := env.session.View()
	if v.Payment != nil {
		t.Error("payment should be closed")
	}
	if len(v.Items) != 1 {
		t.Errorf("cart lines: got %d, want 1", len(v.Items))
	}
	if !v.Pricing.TipAmount.IsZero() {
		t.Errorf("tip should reset with the payment flow: got %s", v.Pricing.TipAmount)
	}
}

func TestReceipt_ImmutableAfterCartChange(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)

	r, err := env.session.SubmitCash(context.Background(), d("20"))
	if err != nil {
		t.Fatalf("submit cash: %v", err)
	}
	before, _ := json.Marshal(r)

	_ = env.session.AddItem(menuItem("main-1", "10.00"))
	_ = env.session.AddItem(menuItem("dessert-1", "7.25"))
	_ = env.session.RemoveItem("main-1")

	after, _ := json.Marshal(r)
	if !bytes.Equal(before, after) {
		t.Errorf("receipt changed after cart mutation:\nbefore %s\nafter  %s", before, after)
	}
	if err := env.session.BeginPayment(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("BeginPayment after completion: expected ErrInvalidState, got %v", err)
	}
}

func TestReprint_ByteIdentical(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)
	if _, err := env.session.SubmitCash(context.Background(), d("15")); err != nil {
		t.Fatalf("submit cash: %v", err)
	}

	ctx := context.Background()
	if _, err := env.session.Reprint(ctx); err != nil {
		t.Fatalf("reprint: %v", err)
	}
	if _, err := env.session.Reprint(ctx); err != nil {
		t.Fatalf("reprint: %v", err)
	}

	p := env.receipts.payloads
	if len(p) != 3 {
		t.Fatalf("payloads: got %d, want 3", len(p))
	}
	if !bytes.Equal(p[1], p[2]) || !bytes.Equal(p[0], p[1]) {
		t.Error("reprint payloads differ")
	}
}

func TestReprint_NoReceipt(t *testing.T) {
	env := newTestSession()
	if _, err := env.session.Reprint(context.Background()); !errors.Is(err, ErrNoReceipt) {
		t.Errorf("expected ErrNoReceipt, got %v", err)
	}
}

func TestPrintKitchenTicket(t *testing.T) {
	env := newTestSession()
	if _, err := env.session.PrintKitchenTicket(context.Background()); !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("empty cart: expected ErrEmptyOrder, got %v", err)
	}

	_ = env.session.AddItem(menuItem("a", "2"))
	_ = env.session.AddItem(menuItem("a", "2"))
	ticket, err := env.session.PrintKitchenTicket(context.Background())
	if err != nil {
		t.Fatalf("print ticket: %v", err)
	}
	if len(ticket.Items) != 1 || ticket.Items[0].Quantity != 2 {
		t.Errorf("ticket items: %+v", ticket.Items)
	}
	if len(env.events.tickets) != 1 {
		t.Errorf("tickets emitted: got %d, want 1", len(env.events.tickets))
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	env := newTestSession()
	env.collecting(t, enum.PaymentMethodCash)
	_, _ = env.session.SubmitCash(context.Background(), d("20"))

	env.session.Reset(context.Background())

	v := env.session.View()
	if len(v.Items) != 0 || v.Payment != nil || v.Receipt != nil {
		t.Errorf("session not reset: %+v", v)
	}
	if _, err := env.session.Receipt(); !errors.Is(err, ErrNoReceipt) {
		t.Errorf("expected ErrNoReceipt after reset, got %v", err)
	}
}
