package router

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/catalog"
	"github.com/coqui-pos/api/internal/config"
	"github.com/coqui-pos/api/internal/handler"
	mw "github.com/coqui-pos/api/internal/middleware"
	"github.com/coqui-pos/api/internal/service"
	"github.com/coqui-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// display may be nil when no customer displays are served.
func New(cfg *config.Config, verifier auth.CredentialVerifier, menu *catalog.Catalog, sessions *service.Registry, hub *ws.Hub, display *ws.Display) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(verifier, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	menuHandler := handler.NewMenuHandler(menu)
	menuHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/sessions/{sid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, sessions, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		var notifier handler.SessionNotifier
		if display != nil {
			notifier = display
		}
		sessionHandler := handler.NewSessionHandler(sessions, menu, notifier)
		r.Route("/sessions", sessionHandler.RegisterRoutes)

		// Manager-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(auth.RoleManager))
			r.Get("/manager/status", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]int{"open_sessions": sessions.Len()})
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
