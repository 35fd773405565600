package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/cart"
	"github.com/coqui-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is created once per settled payment and never modified.
// Reprints send the same value again.
type Receipt struct {
	OrderID           string             `json:"order_id"`
	SessionID         uuid.UUID          `json:"session_id"`
	LineItems         []cart.LineItem    `json:"line_items"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	TaxRate           decimal.Decimal    `json:"tax_rate"`
	Tax               decimal.Decimal    `json:"tax"`
	Tip               decimal.Decimal    `json:"tip"`
	Total             decimal.Decimal    `json:"total"`
	AmountPaid        decimal.Decimal    `json:"amount_paid"`
	PaymentMethod     enum.PaymentMethod `json:"payment_method"`
	CashReceived      *decimal.Decimal   `json:"cash_received"`
	Change            *decimal.Decimal   `json:"change"`
	AuthorizationCode *string            `json:"authorization_code"`
	Timestamp         time.Time          `json:"timestamp"`
}

// RefundCompleted is emitted when a manager reverses a settled receipt.
type RefundCompleted struct {
	OrderID    string          `json:"order_id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Amount     decimal.Decimal `json:"amount"`
	RefundedBy auth.Role       `json:"refunded_by"`
	Timestamp  time.Time       `json:"timestamp"`
}

// KitchenTicket lists the current order for the kitchen printer.
type KitchenTicket struct {
	SessionID uuid.UUID       `json:"session_id"`
	Items     []cart.LineItem `json:"items"`
	Timestamp time.Time       `json:"timestamp"`
}

// OrderCleared signals that a session's cart and payment were discarded.
type OrderCleared struct {
	SessionID uuid.UUID `json:"session_id"`
}

// ReceiptSink receives a finalized receipt once per settlement and once per
// reprint. Implementations must not modify the receipt.
type ReceiptSink interface {
	Emit(ctx context.Context, receipt *Receipt) error
}

// EventSink receives the other outbound session events.
type EventSink interface {
	RefundCompleted(ctx context.Context, ev RefundCompleted) error
	OrderCleared(ctx context.Context, ev OrderCleared) error
	KitchenTicket(ctx context.Context, ticket KitchenTicket) error
}

const receiptWidth = 40

// Text renders the receipt for a printer or log.
func (r *Receipt) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, center("COQUI POS", receiptWidth))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Order #%s\n", r.OrderID)
	fmt.Fprintln(&b, r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, thin)
	for _, l := range r.LineItems {
		fmt.Fprintln(&b, line(fmt.Sprintf("%dx %s", l.Quantity, l.Item.Name), money(l.LineTotal())))
	}
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, line("Subtotal:", money(r.Subtotal)))
	fmt.Fprintln(&b, line(fmt.Sprintf("Tax (%s%%):", r.TaxRate.Mul(decimal.NewFromInt(100)).String()), money(r.Tax)))
	fmt.Fprintln(&b, line("Tip:", money(r.Tip)))
	fmt.Fprintln(&b, line("Total:", money(r.Total)))
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Payment: %s\n", r.PaymentMethod)
	if r.CashReceived != nil {
		fmt.Fprintln(&b, line("Cash:", money(*r.CashReceived)))
	}
	if r.Change != nil {
		fmt.Fprintln(&b, line("Change:", money(*r.Change)))
	}
	if r.AuthorizationCode != nil {
		fmt.Fprintln(&b, line("Auth code:", *r.AuthorizationCode))
	}
	fmt.Fprint(&b, rule)
	return b.String()
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func line(left, right string) string {
	pad := receiptWidth - len([]rune(left)) - len([]rune(right))
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
