package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/coqui-pos/api/internal/catalog"
	"github.com/coqui-pos/api/internal/service"
)

// writeServiceError maps order session errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ife *service.InsufficientFundsError
	if errors.As(err, &ife) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":     service.ErrInsufficientFunds.Error(),
			"due":       ife.Due.StringFixed(2),
			"received":  ife.Received.StringFixed(2),
			"shortfall": ife.Shortfall().StringFixed(2),
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, catalog.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrCardDeclined):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrInvalidTip),
		errors.Is(err, service.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPaymentNotStarted),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrNoReceipt),
		errors.Is(err, service.ErrNoRefundChallenge),
		errors.Is(err, service.ErrAuthorizationPending),
		errors.Is(err, service.ErrAuthorizationCancelled):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
