package handler

import (
	"encoding/json"
	"net/http"

	"github.com/coqui-pos/api/internal/enum"
	"github.com/coqui-pos/api/internal/service"
)

// --- Request types ---

type tipRequest struct {
	Percent *string `json:"percent"`
	Amount  *string `json:"amount"`
}

type methodRequest struct {
	Method string `json:"method"`
}

type cashRequest struct {
	AmountReceived string `json:"amount_received"`
}

type credentialRequest struct {
	Credential string `json:"credential"`
}

// --- Payment flow ---

func (h *SessionHandler) BeginPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, s, s.BeginPayment)
}

// CancelPayment closes the payment flow and keeps the cart.
func (h *SessionHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, s, s.CancelPayment)
}

// SetTip accepts exactly one of percent or amount.
func (h *SessionHandler) SetTip(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req tipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if (req.Percent == nil) == (req.Amount == nil) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of percent or amount is required"})
		return
	}

	if req.Percent != nil {
		percent, ok := parseMoney(*req.Percent)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid percent"})
			return
		}
		h.mutate(w, r, s, func() error { return s.SetTipPercent(percent) })
		return
	}

	amount, ok := parseMoney(*req.Amount)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}
	h.mutate(w, r, s, func() error { return s.SetCustomTip(amount) })
}

func (h *SessionHandler) ChooseMethod(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req methodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	method := enum.PaymentMethod(req.Method)
	h.mutate(w, r, s, func() error { return s.ChooseMethod(method) })
}

// GoBack clears the chosen method. It also cancels a card authorization
// in flight.
func (h *SessionHandler) GoBack(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, s, s.GoBack)
}

func (h *SessionHandler) SubmitCash(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req cashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	amount, ok := parseMoney(req.AmountReceived)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_received"})
		return
	}

	receipt, err := s.SubmitCash(r.Context(), amount)
	h.settled(w, r, s, receipt, err)
}

// SubmitCard blocks until the processor approves or declines, or the
// authorization is cancelled.
func (h *SessionHandler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	receipt, err := s.SubmitCard(r.Context())
	h.settled(w, r, s, receipt, err)
}

func (h *SessionHandler) settled(w http.ResponseWriter, r *http.Request, s *service.OrderSession, receipt *service.Receipt, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.notify(r.Context(), s.View())
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

// --- Receipt ---

func (h *SessionHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	receipt, err := s.Receipt()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

func (h *SessionHandler) Reprint(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	receipt, err := s.Reprint(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

// --- Refund ---

// RequestRefund opens the manager credential challenge. The role comes
// from the operator token.
func (h *SessionHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	role, ok := operatorRole(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	h.mutate(w, r, s, func() error { return s.RequestRefund(role) })
}

func (h *SessionHandler) SubmitCredential(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	role, ok := operatorRole(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Credential == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "credential is required"})
		return
	}

	ev, err := s.SubmitCredential(r.Context(), role, req.Credential)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refundResponse{
		OrderID:    ev.OrderID,
		Amount:     ev.Amount.StringFixed(2),
		RefundedBy: ev.RefundedBy,
		Timestamp:  ev.Timestamp,
	})
}

func (h *SessionHandler) CancelRefund(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, s, func() error {
		s.CancelRefund()
		return nil
	})
}
