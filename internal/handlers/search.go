package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
)

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	items, err := h.assembler.Assemble(r.Context(), query)
	if err != nil {
		h.writeError(w, "Search failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, models.Envelope{Items: items})
}
