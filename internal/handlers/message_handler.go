package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"imovelBack/internal/models"
	services "imovelBack/internal/services"
)

type MessageHandler struct {
	MessageService *services.MessageService
}

func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.MessageService.SendMessage(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidParty) {
			http.Error(w, "Invalid receiver", http.StatusBadRequest)
			return
		}
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Receiver does not exist", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *MessageHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversations, err := h.MessageService.GetConversations(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve conversations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversations)
}

func (h *MessageHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cp, ok := counterpartyFromQuery(r)
	if !ok {
		http.Error(w, "Invalid counterparty", http.StatusBadRequest)
		return
	}

	messages, err := h.MessageService.GetThread(r.Context(), userID, cp)
	if err != nil {
		http.Error(w, "Failed to retrieve messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

func (h *MessageHandler) MarkThreadRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cp, ok := counterpartyFromQuery(r)
	if !ok {
		http.Error(w, "Invalid counterparty", http.StatusBadRequest)
		return
	}

	marked, err := h.MessageService.MarkThreadRead(r.Context(), userID, cp)
	if err != nil {
		http.Error(w, "Failed to mark messages as read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"marked": marked})
}

// GetUnreadBadge serves the coarse "anything new since my last visit"
// signal backed by the Redis marker.
func (h *MessageHandler) GetUnreadBadge(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	hasUnread, err := h.MessageService.HasUnreadSinceLastVisit(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to compute unread badge", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"has_unread": hasUnread})
}
