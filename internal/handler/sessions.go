package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/catalog"
	"github.com/coqui-pos/api/internal/middleware"
	"github.com/coqui-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStore opens and finds order sessions.
// Satisfied by *service.Registry.
type SessionStore interface {
	Create() *service.OrderSession
	Get(id uuid.UUID) (*service.OrderSession, error)
	Close(ctx context.Context, id uuid.UUID) error
}

// ItemLookup resolves menu item IDs. Satisfied by *catalog.Catalog.
type ItemLookup interface {
	Get(id string) (catalog.MenuItem, error)
}

// SessionNotifier is told about every cart or payment change so customer
// displays can follow along. Satisfied by *ws.Display.
type SessionNotifier interface {
	SessionChanged(ctx context.Context, v service.View) error
}

// SessionHandler handles order session endpoints: cart, payment, receipt
// and refund.
type SessionHandler struct {
	sessions SessionStore
	menu     ItemLookup
	notifier SessionNotifier
}

// NewSessionHandler creates a new SessionHandler. notifier may be nil.
func NewSessionHandler(sessions SessionStore, menu ItemLookup, notifier SessionNotifier) *SessionHandler {
	return &SessionHandler{sessions: sessions, menu: menu, notifier: notifier}
}

// RegisterRoutes registers session endpoints on the given Chi router.
// Expected to be mounted at /sessions behind Authenticate.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Reset)
		r.Post("/close", h.Close)

		r.Post("/items", h.AddItem)
		r.Put("/items/{itemID}", h.UpdateQuantity)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Delete("/items", h.ClearCart)
		r.Post("/kitchen-ticket", h.KitchenTicket)

		r.Post("/payment", h.BeginPayment)
		r.Delete("/payment", h.CancelPayment)
		r.Put("/payment/tip", h.SetTip)
		r.Put("/payment/method", h.ChooseMethod)
		r.Delete("/payment/method", h.GoBack)
		r.Post("/payment/cash", h.SubmitCash)
		r.Post("/payment/card", h.SubmitCard)

		r.Get("/receipt", h.Receipt)
		r.Post("/receipt/reprint", h.Reprint)

		r.Post("/refund", h.RequestRefund)
		r.Post("/refund/credential", h.SubmitCredential)
		r.Delete("/refund", h.CancelRefund)
	})
}

// --- Request types ---

type addItemRequest struct {
	ItemID string `json:"item_id"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// --- Session ---

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	writeJSON(w, http.StatusCreated, toSessionResponse(s.View()))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s.View()))
}

// Reset discards the cart, the payment flow and any receipt. The session
// stays open for the next order.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Reset(r.Context())
	writeJSON(w, http.StatusOK, toSessionResponse(s.View()))
}

// Close resets the session and removes it.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Close(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Cart ---

func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}

	item, err := h.menu.Get(req.ItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.mutate(w, r, s, func() error { return s.AddItem(item) })
}

func (h *SessionHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}

	itemID := chi.URLParam(r, "itemID")
	h.mutate(w, r, s, func() error { return s.UpdateQuantity(itemID, *req.Quantity) })
}

func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemID")
	h.mutate(w, r, s, func() error { return s.RemoveItem(itemID) })
}

func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, s, s.ClearCart)
}

func (h *SessionHandler) KitchenTicket(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	ticket, err := s.PrintKitchenTicket(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kitchenTicketResponse{
		Items:     toLineItemResponses(ticket.Items),
		Timestamp: ticket.Timestamp,
	})
}

// --- Helpers ---

// session resolves {sid} and writes the error response when it fails.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*service.OrderSession, bool) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return s, true
}

// mutate runs fn and responds with the updated session.
func (h *SessionHandler) mutate(w http.ResponseWriter, r *http.Request, s *service.OrderSession, fn func() error) {
	if err := fn(); err != nil {
		writeServiceError(w, err)
		return
	}
	v := s.View()
	h.notify(r.Context(), v)
	writeJSON(w, http.StatusOK, toSessionResponse(v))
}

func (h *SessionHandler) notify(ctx context.Context, v service.View) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.SessionChanged(ctx, v); err != nil {
		log.Printf("ERROR: notify session %s: %v", v.SessionID, err)
	}
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseMoney(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// operatorRole returns the role from the request's token claims.
func operatorRole(r *http.Request) (auth.Role, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return 0, false
	}
	return claims.Role, true
}
