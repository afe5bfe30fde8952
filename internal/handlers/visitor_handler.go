package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"imovelBack/internal/models"
	services "imovelBack/internal/services"
)

type VisitorHandler struct {
	Service *services.VisitorService
}

// Contact is the public (unauthenticated) listing contact form.
func (h *VisitorHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	visitor, err := h.Service.Contact(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(visitor)
}
