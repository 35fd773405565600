package handler

import (
	"time"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/cart"
	"github.com/coqui-pos/api/internal/enum"
	"github.com/coqui-pos/api/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money leaves the API as strings with two fraction digits.

type lineItemResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type paymentResponse struct {
	Status       enum.PaymentStatus `json:"status"`
	Method       enum.PaymentMethod `json:"method"`
	TipPercent   string             `json:"tip_percent"`
	CustomTip    *string            `json:"custom_tip"`
	CashReceived *string            `json:"cash_received"`
	TipPresets   []int              `json:"tip_presets"`
}

type sessionResponse struct {
	ID              uuid.UUID          `json:"id"`
	Items           []lineItemResponse `json:"items"`
	Subtotal        string             `json:"subtotal"`
	TaxRate         string             `json:"tax_rate"`
	Tax             string             `json:"tax"`
	Total           string             `json:"total"`
	Tip             string             `json:"tip"`
	GrandTotal      string             `json:"grand_total"`
	AmountDue       string             `json:"amount_due"`
	Payment         *paymentResponse   `json:"payment"`
	Authorizing     bool               `json:"authorizing"`
	RefundChallenge bool               `json:"refund_challenge"`
	Receipt         *receiptResponse   `json:"receipt"`
}

type receiptResponse struct {
	OrderID           string             `json:"order_id"`
	SessionID         uuid.UUID          `json:"session_id"`
	Items             []lineItemResponse `json:"items"`
	Subtotal          string             `json:"subtotal"`
	TaxRate           string             `json:"tax_rate"`
	Tax               string             `json:"tax"`
	Tip               string             `json:"tip"`
	Total             string             `json:"total"`
	AmountPaid        string             `json:"amount_paid"`
	PaymentMethod     enum.PaymentMethod `json:"payment_method"`
	CashReceived      *string            `json:"cash_received"`
	Change            *string            `json:"change"`
	AuthorizationCode *string            `json:"authorization_code"`
	Timestamp         time.Time          `json:"timestamp"`
	Text              string             `json:"text"`
}

type refundResponse struct {
	OrderID    string    `json:"order_id"`
	Amount     string    `json:"amount"`
	RefundedBy auth.Role `json:"refunded_by"`
	Timestamp  time.Time `json:"timestamp"`
}

type kitchenTicketResponse struct {
	Items     []lineItemResponse `json:"items"`
	Timestamp time.Time          `json:"timestamp"`
}

func toLineItemResponses(items []cart.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, len(items))
	for i, l := range items {
		out[i] = lineItemResponse{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			UnitPrice: l.Item.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal().StringFixed(2),
		}
	}
	return out
}

func toSessionResponse(v service.View) sessionResponse {
	resp := sessionResponse{
		ID:              v.SessionID,
		Items:           toLineItemResponses(v.Items),
		Subtotal:        v.Pricing.Subtotal.StringFixed(2),
		TaxRate:         v.Pricing.TaxRate.String(),
		Tax:             v.Pricing.Tax.StringFixed(2),
		Total:           v.Pricing.Total.StringFixed(2),
		Tip:             v.Pricing.TipAmount.StringFixed(2),
		GrandTotal:      v.Pricing.GrandTotal.StringFixed(2),
		AmountDue:       v.AmountDue.StringFixed(2),
		Authorizing:     v.Authorizing,
		RefundChallenge: v.RefundChallenge,
	}
	if p := v.Payment; p != nil {
		resp.Payment = &paymentResponse{
			Status:       p.Status,
			Method:       p.Method,
			TipPercent:   p.TipPercent.String(),
			CustomTip:    moneyPtr(p.CustomTip),
			CashReceived: moneyPtr(p.CashReceived),
			TipPresets:   enum.TipPresets,
		}
	}
	if v.Receipt != nil {
		r := toReceiptResponse(v.Receipt)
		resp.Receipt = &r
	}
	return resp
}

func toReceiptResponse(r *service.Receipt) receiptResponse {
	return receiptResponse{
		OrderID:           r.OrderID,
		SessionID:         r.SessionID,
		Items:             toLineItemResponses(r.LineItems),
		Subtotal:          r.Subtotal.StringFixed(2),
		TaxRate:           r.TaxRate.String(),
		Tax:               r.Tax.StringFixed(2),
		Tip:               r.Tip.StringFixed(2),
		Total:             r.Total.StringFixed(2),
		AmountPaid:        r.AmountPaid.StringFixed(2),
		PaymentMethod:     r.PaymentMethod,
		CashReceived:      moneyPtr(r.CashReceived),
		Change:            moneyPtr(r.Change),
		AuthorizationCode: r.AuthorizationCode,
		Timestamp:         r.Timestamp,
		Text:              r.Text(),
	}
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
