package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/importer"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

// InventoryHandler handles summaries and bulk file operations.
type InventoryHandler struct {
	DB *sql.DB
	// LowStockThreshold is used when a request names no threshold.
	LowStockThreshold int
}

// Summary handles GET /api/inventory/summary.
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request, _ *auth.Session) {
	summary, err := store.GetSummary(r.Context(), h.DB)
	if err != nil {
		internalError(w, err, "Failed to get inventory summary.")
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}

// LowStock handles GET /api/inventory/low-stock?threshold=.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request, _ *auth.Session) {
	threshold := h.LowStockThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "Threshold must be a whole number.")
			return
		}
		threshold = n
	}

	items, err := store.ListLowStock(r.Context(), h.DB, threshold)
	if err != nil {
		internalError(w, err, "Failed to get low stock items.")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// BulkUpdate handles POST /api/inventory/bulk-update.
func (h *InventoryHandler) BulkUpdate(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	var req importer.UpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	log.Info().Str("user", s.Username).Str("file", req.File.Name).Str("mode", string(req.Mode)).Msg("bulk update requested")
	res, err := importer.ProcessInventoryFile(r.Context(), h.DB, req)
	if err != nil {
		bulkError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Import handles POST /api/inventory/import.
func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	var req struct {
		File importer.Upload `json:"fileData"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	log.Info().Str("user", s.Username).Str("file", req.File.Name).Msg("initial import requested")
	res, err := importer.ImportInitialItems(r.Context(), h.DB, req.File)
	if err != nil {
		bulkError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// bulkError reports a request-fatal bulk failure in the same shape as a
// row manifest so the UI can show it alongside row errors.
func bulkError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, store.ErrNotInitialized) {
		status = http.StatusInternalServerError
	}
	log.Error().Err(err).Msg("bulk file operation failed")
	jsonResponse(w, status, failure{Message: err.Error(), Errors: []string{err.Error()}})
}
