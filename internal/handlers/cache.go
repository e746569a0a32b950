package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/bggsearch/internal/cache"
)

func (h *Handler) HandleCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := h.store.List(r.Context())
		if err != nil {
			h.writeError(w, "Unable to list cache: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, entries)
	case http.MethodDelete:
		if err := h.store.Clear(r.Context()); err != nil {
			h.writeError(w, "Unable to clear cache: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleCacheEntry(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/cache/")

	switch r.Method {
	case http.MethodGet:
		path, found, err := h.store.Get(r.Context(), key)
		if err != nil {
			h.writeError(w, "Unable to read cache: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !found {
			h.writeError(w, "Cache entry not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, map[string]string{"key": key, "path": path})
	case http.MethodDelete:
		err := h.store.Delete(r.Context(), key)
		if errors.Is(err, cache.ErrNotFound) {
			h.writeError(w, "Cache entry not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.writeError(w, "Unable to delete cache entry: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
