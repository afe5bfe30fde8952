package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"imovelBack/internal/models"
	services "imovelBack/internal/services"
)

type stubConversationStore struct{}

func (stubConversationStore) GetConversationsByUserID(ctx context.Context, userID int) ([]models.Conversation, error) {
	return []models.Conversation{{
		Counterparty: models.Counterparty{Kind: models.PartyVisitor, ID: 3},
		Name:         "Ana",
		LastMessage:  models.Message{ID: 1, Text: "olá", CreatedAt: time.Now()},
		UnreadCount:  1,
	}}, nil
}

func (stubConversationStore) GetThread(ctx context.Context, userID int, cp models.Counterparty) ([]models.Message, error) {
	return []models.Message{{ID: 1, Text: "olá"}}, nil
}

func (stubConversationStore) CreateMessage(ctx context.Context, message models.Message) (models.Message, error) {
	message.ID = 2
	return message, nil
}

func (stubConversationStore) MarkThreadRead(ctx context.Context, userID int, cp models.Counterparty) (int64, error) {
	return 1, nil
}

func (stubConversationStore) CounterpartyName(ctx context.Context, cp models.Counterparty) (string, error) {
	return "Ana", nil
}

func authenticated(req *http.Request, userID int) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "user_id", userID))
}

func TestGetInboxRequiresAuth(t *testing.T) {
	h := &InboxHandler{Manager: services.NewInboxManager(context.Background(), stubConversationStore{}, time.Hour, nil)}

	req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
	rec := httptest.NewRecorder()
	h.GetInbox(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without auth context, got %d", rec.Code)
	}
}

func TestGetInboxMountsAndServesSnapshot(t *testing.T) {
	manager := services.NewInboxManager(context.Background(), stubConversationStore{}, time.Hour, nil)
	h := &InboxHandler{Manager: manager}
	defer manager.Unmount(5)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/inbox", nil), 5)
	rec := httptest.NewRecorder()
	h.GetInbox(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap services.InboxSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	// The mount triggers an async initial fetch; poll the endpoint the
	// way a client would until the conversation shows up.
	deadline := time.Now().Add(time.Second)
	for len(snap.Conversations) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		rec = httptest.NewRecorder()
		h.GetInbox(rec, authenticated(httptest.NewRequest(http.MethodGet, "/api/inbox", nil), 5))
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
	}
	if len(snap.Conversations) != 1 || snap.Conversations[0].Name != "Ana" {
		t.Fatalf("expected Ana's conversation in the snapshot, got %+v", snap.Conversations)
	}
}

func TestSelectThreadValidatesCounterparty(t *testing.T) {
	manager := services.NewInboxManager(context.Background(), stubConversationStore{}, time.Hour, nil)
	h := &InboxHandler{Manager: manager}

	body := strings.NewReader(`{"kind":"robot","id":3}`)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/inbox/select", body), 5)
	rec := httptest.NewRecorder()
	h.SelectThread(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown counterparty kind, got %d", rec.Code)
	}
	manager.Unmount(5)
}
