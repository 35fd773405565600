// Package sink provides receipt and event sinks for order sessions.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/coqui-pos/api/internal/service"
)

// Sink receives every outbound session event.
type Sink interface {
	service.ReceiptSink
	service.EventSink
}

// Multi fans every event out to all of its sinks. A failing sink does not
// stop delivery to the others; their errors are joined.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, r *service.Receipt) error {
	return m.each(func(s Sink) error { return s.Emit(ctx, r) })
}

func (m Multi) RefundCompleted(ctx context.Context, ev service.RefundCompleted) error {
	return m.each(func(s Sink) error { return s.RefundCompleted(ctx, ev) })
}

func (m Multi) OrderCleared(ctx context.Context, ev service.OrderCleared) error {
	return m.each(func(s Sink) error { return s.OrderCleared(ctx, ev) })
}

func (m Multi) KitchenTicket(ctx context.Context, t service.KitchenTicket) error {
	return m.each(func(s Sink) error { return s.KitchenTicket(ctx, t) })
}

func (m Multi) each(fn func(s Sink) error) error {
	var errs []error
	for _, s := range m {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Printer writes receipts and kitchen tickets as plain text, one document
// per call. Refund and clear events are printed as a single line.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Emit(ctx context.Context, r *service.Receipt) error {
	return p.print(r.Text())
}

func (p *Printer) RefundCompleted(ctx context.Context, ev service.RefundCompleted) error {
	return p.print(fmt.Sprintf("REFUND order %s amount $%s by %s", ev.OrderID, ev.Amount.StringFixed(2), ev.RefundedBy))
}

func (p *Printer) OrderCleared(ctx context.Context, ev service.OrderCleared) error {
	return nil
}

func (p *Printer) KitchenTicket(ctx context.Context, t service.KitchenTicket) error {
	var b strings.Builder
	fmt.Fprintf(&b, "KITCHEN %s\n", t.Timestamp.Format("15:04:05"))
	for _, l := range t.Items {
		fmt.Fprintf(&b, "%3d x %s\n", l.Quantity, l.Item.Name)
	}
	return p.print(strings.TrimSuffix(b.String(), "\n"))
}

func (p *Printer) print(doc string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.w, doc); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}
