package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/bggsearch/internal/cache"
	"github.com/lehigh-university-libraries/bggsearch/internal/models"
)

// ResultAssembler produces launcher items for a query
type ResultAssembler interface {
	Assemble(ctx context.Context, query string) ([]models.ResultItem, error)
}

type Handler struct {
	assembler ResultAssembler
	store     cache.Store
}

func New(assembler ResultAssembler, store cache.Store) *Handler {
	return &Handler{
		assembler: assembler,
		store:     store,
	}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", h.HandleSearch)
	mux.HandleFunc("/api/cache", h.HandleCache)
	mux.HandleFunc("/api/cache/", h.HandleCacheEntry)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
