package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"imovelBack/internal/models"
	services "imovelBack/internal/services"
)

// InboxHandler exposes the synchronized messaging view. The first GET
// mounts a per-user polling loop; subsequent GETs serve its current
// snapshot. DELETE unmounts it explicitly (closing the view), and the
// janitor reaps loops whose views silently went away.
type InboxHandler struct {
	Manager *services.InboxManager
}

func (h *InboxHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	syncer := h.Manager.Mount(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(syncer.Snapshot())
}

func (h *InboxHandler) SelectThread(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var cp models.Counterparty
	if err := json.NewDecoder(r.Body).Decode(&cp); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if cp.Kind != models.PartyUser && cp.Kind != models.PartyVisitor || cp.ID <= 0 {
		http.Error(w, "Invalid counterparty", http.StatusBadRequest)
		return
	}

	syncer := h.Manager.Mount(userID)
	syncer.Select(r.Context(), cp)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(syncer.Snapshot())
}

func (h *InboxHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	syncer := h.Manager.Mount(userID)
	created, err := syncer.Send(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidParty) {
			http.Error(w, "Invalid receiver", http.StatusBadRequest)
			return
		}
		// The client keeps its compose content; the only retry is the
		// user trying again.
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *InboxHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	syncer := h.Manager.Mount(userID)
	if err := syncer.MarkRead(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *InboxHandler) CloseInbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.Manager.Unmount(userID)
	w.WriteHeader(http.StatusNoContent)
}
