package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AuthHandler handles operator login.
type AuthHandler struct {
	verifier  auth.CredentialVerifier
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(verifier auth.CredentialVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{verifier: verifier, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// --- Request / Response types ---

type loginRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	OperatorID  uuid.UUID `json:"operator_id"`
	Role        auth.Role `json:"role"`
}

// --- Handlers ---

// Login exchanges a role and its password for an operator token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Role == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role and password are required"})
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be EMPLOYEE or MANAGER"})
		return
	}

	if err := h.verifier.Verify(r.Context(), role, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrNoCredential) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: verify %s credential: %v", role, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	operatorID := uuid.New()
	token, err := auth.GenerateToken(h.jwtSecret, operatorID, role)
	if err != nil {
		log.Printf("ERROR: generate token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		OperatorID:  operatorID,
		Role:        role,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
