package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"imovelBack/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var conversationColumns = []string{
	"party_id", "name",
	"id", "sender_user_id", "sender_visitor_id", "receiver_user_id", "receiver_visitor_id",
	"text", "created_at", "read_at", "unread",
}

func TestCreateMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := &MessageRepository{Db: db}
	senderID, receiverID := 1, 2

	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(7, 1))

	created, err := repo.CreateMessage(context.Background(), models.Message{
		SenderUserID:   &senderID,
		ReceiverUserID: &receiverID,
		Text:           "oi",
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("expected id 7, got %d", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetConversationsMergesAndSortsByRecency(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := &MessageRepository{Db: db}
	now := time.Now()
	one, two := 2, 1

	userRows := sqlmock.NewRows(conversationColumns).
		AddRow(2, "Bruno", 10, one, nil, two, nil, "older", now.Add(-time.Hour), nil, 0)
	visitorRows := sqlmock.NewRows(conversationColumns).
		AddRow(5, "Ana", 11, nil, 5, 1, nil, "newer", now, nil, 2)

	mock.ExpectQuery("JOIN users u ON").WillReturnRows(userRows)
	mock.ExpectQuery("JOIN visitors v ON").WillReturnRows(visitorRows)

	conversations, err := repo.GetConversationsByUserID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetConversationsByUserID: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}
	if conversations[0].Counterparty.Kind != models.PartyVisitor || conversations[0].Counterparty.ID != 5 {
		t.Errorf("most recent conversation should be the visitor one, got %+v", conversations[0].Counterparty)
	}
	if conversations[0].UnreadCount != 2 {
		t.Errorf("expected unread count 2, got %d", conversations[0].UnreadCount)
	}
	if conversations[1].Name != "Bruno" {
		t.Errorf("expected second conversation with Bruno, got %q", conversations[1].Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetThreadInvalidKind(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := &MessageRepository{Db: db}
	_, err = repo.GetThread(context.Background(), 1, models.Counterparty{Kind: "bot", ID: 3})
	if !errors.Is(err, models.ErrInvalidParty) {
		t.Errorf("expected ErrInvalidParty, got %v", err)
	}
}

func TestMarkThreadReadReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := &MessageRepository{Db: db}

	mock.ExpectExec("UPDATE messages SET read_at").
		WillReturnResult(sqlmock.NewResult(0, 3))

	marked, err := repo.MarkThreadRead(context.Background(), 1, models.Counterparty{Kind: models.PartyUser, ID: 2})
	if err != nil {
		t.Fatalf("MarkThreadRead: %v", err)
	}
	if marked != 3 {
		t.Errorf("expected 3 marked, got %d", marked)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLatestMessageAtNoMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := &MessageRepository{Db: db}

	mock.ExpectQuery("SELECT MAX").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	_, found, err := repo.LatestMessageAt(context.Background(), 1)
	if err != nil {
		t.Fatalf("LatestMessageAt: %v", err)
	}
	if found {
		t.Error("expected found=false with no messages")
	}
}

func TestCounterpartyNameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := &MessageRepository{Db: db}

	mock.ExpectQuery("SELECT name FROM visitors").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err = repo.CounterpartyName(context.Background(), models.Counterparty{Kind: models.PartyVisitor, ID: 9})
	if !errors.Is(err, models.ErrNoRecord) {
		t.Errorf("expected ErrNoRecord, got %v", err)
	}
}
