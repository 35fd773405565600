package handler

import (
	"net/http"

	"github.com/coqui-pos/api/internal/catalog"
	"github.com/go-chi/chi/v5"
)

// MenuSource is the read side of the menu catalog.
// Satisfied by *catalog.Catalog.
type MenuSource interface {
	Get(id string) (catalog.MenuItem, error)
	Items(category string) []catalog.MenuItem
	Categories() []catalog.Category
}

// MenuHandler serves the menu for category navigation.
type MenuHandler struct {
	menu MenuSource
}

func NewMenuHandler(menu MenuSource) *MenuHandler {
	return &MenuHandler{menu: menu}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
}

type menuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

type menuResponse struct {
	Categories []catalog.Category  `json:"categories"`
	Items      []menuItemResponse `json:"items"`
}

// List returns the categories and items, optionally filtered by ?category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !h.hasCategory(category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
		return
	}

	items := h.menu.Items(category)
	resp := menuResponse{
		Categories: h.menu.Categories(),
		Items:      make([]menuItemResponse, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = menuItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Price:       it.UnitPrice.StringFixed(2),
			Category:    it.Category,
			Type:        it.Type,
			Description: it.Description,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) hasCategory(key string) bool {
	for _, c := range h.menu.Categories() {
		if c.Key == key {
			return true
		}
	}
	return false
}
