package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

func duplicateSKUMessage(sku string) string {
	return fmt.Sprintf("SKU %q already exists. Please use a unique SKU.", sku)
}

// internalError logs err and writes a 500 with a readable message.
func internalError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, store.ErrNotInitialized) {
		message = "Database not initialized."
	}
	log.Error().Err(err).Msg(message)
	jsonError(w, http.StatusInternalServerError, message)
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "No valid item ID provided.")
		return 0, false
	}
	return id, true
}

// List handles GET /api/items?category=&storage=&search=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request, _ *auth.Session) {
	q := r.URL.Query()
	items, err := store.ListItems(r.Context(), h.DB, model.ItemFilter{
		Category: q.Get("category"),
		Storage:  q.Get("storage"),
		Search:   q.Get("search"),
	})
	if err != nil {
		internalError(w, err, "Failed to list items.")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	var in model.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := in.Normalize(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, in)
	if errors.Is(err, store.ErrDuplicateSKU) {
		jsonError(w, http.StatusConflict, duplicateSKUMessage(in.SKU))
		return
	}
	if err != nil {
		internalError(w, err, "Failed to add item.")
		return
	}

	log.Info().Int64("id", item.ID).Str("user", s.Username).Msg("item added")
	jsonResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      item.ID,
		"item":    item,
	})
}

// Get handles GET /api/items/{id}. A missing item yields null.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request, _ *auth.Session) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, err, fmt.Sprintf("Failed to retrieve item: %v", err))
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var in model.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := in.Normalize(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := store.UpdateItem(r.Context(), h.DB, id, in)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found for update.", id))
		return
	case errors.Is(err, store.ErrDuplicateSKU):
		jsonError(w, http.StatusConflict, duplicateSKUMessage(in.SKU))
		return
	case err != nil:
		internalError(w, err, "Failed to update item.")
		return
	}

	if !changed {
		jsonResponse(w, http.StatusOK, map[string]bool{"success": true, "unchanged": true})
		return
	}
	log.Info().Int64("id", id).Str("user", s.Username).Msg("item updated")
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// Delete handles DELETE /api/items/{id}. Only admins may delete; anyone
// else gets a permission-denied result.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	if !s.IsAdmin() {
		ev := log.Warn()
		if s != nil {
			ev = ev.Str("user", s.Username).Str("role", s.Role)
		}
		ev.Msg("unauthorized delete attempt")
		jsonError(w, http.StatusForbidden, "Permission denied: Only admins can delete items.")
		return
	}

	id, ok := itemID(w, r)
	if !ok {
		return
	}

	err := store.DeleteItem(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found.", id))
		return
	}
	if err != nil {
		internalError(w, err, fmt.Sprintf("Database error during deletion: %v", err))
		return
	}

	log.Info().Int64("id", id).Str("user", s.Username).Msg("item deleted")
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
