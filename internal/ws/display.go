package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coqui-pos/api/internal/enum"
	"github.com/coqui-pos/api/internal/service"
	"github.com/google/uuid"
)

// Display forwards session output to the customer displays watching the
// session. It satisfies service.ReceiptSink and service.EventSink.
type Display struct {
	hub *Hub
}

func NewDisplay(hub *Hub) *Display {
	return &Display{hub: hub}
}

func (d *Display) Emit(ctx context.Context, r *service.Receipt) error {
	return d.send(r.SessionID, enum.EventReceiptIssued, r)
}

func (d *Display) RefundCompleted(ctx context.Context, ev service.RefundCompleted) error {
	return d.send(ev.SessionID, enum.EventRefundCompleted, ev)
}

func (d *Display) OrderCleared(ctx context.Context, ev service.OrderCleared) error {
	return d.send(ev.SessionID, enum.EventOrderCleared, ev)
}

func (d *Display) KitchenTicket(ctx context.Context, t service.KitchenTicket) error {
	return d.send(t.SessionID, enum.EventKitchenTicket, t)
}

// SessionChanged pushes the latest cart and totals after a mutation.
func (d *Display) SessionChanged(ctx context.Context, v service.View) error {
	return d.send(v.SessionID, enum.EventSessionSnapshot, v)
}

func (d *Display) send(sessionID uuid.UUID, eventType string, payload any) error {
	ev, err := newEvent(eventType, payload)
	if err != nil {
		return err
	}
	d.hub.BroadcastToSession(sessionID, ev)
	return nil
}

func newEvent(eventType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: b}, nil
}
