package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"imovelBack/internal/models"
)

type fakeConversationStore struct {
	mu            sync.Mutex
	conversations []models.Conversation
	threads       map[models.Counterparty][]models.Message
	names         map[models.Counterparty]string
	nextID        int

	conversationsErr error
	threadErr        error
	createErr        error

	markedRead []models.Counterparty
}

func newFakeStore() *fakeConversationStore {
	return &fakeConversationStore{
		threads: make(map[models.Counterparty][]models.Message),
		names:   make(map[models.Counterparty]string),
		nextID:  1,
	}
}

func (f *fakeConversationStore) GetConversationsByUserID(ctx context.Context, userID int) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conversationsErr != nil {
		return nil, f.conversationsErr
	}
	out := make([]models.Conversation, len(f.conversations))
	copy(out, f.conversations)
	return out, nil
}

func (f *fakeConversationStore) GetThread(ctx context.Context, userID int, cp models.Counterparty) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	thread := f.threads[cp]
	out := make([]models.Message, len(thread))
	copy(out, thread)
	return out, nil
}

func (f *fakeConversationStore) CreateMessage(ctx context.Context, message models.Message) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Message{}, f.createErr
	}
	message.ID = f.nextID
	f.nextID++
	message.CreatedAt = time.Now()
	cp := models.Counterparty{Kind: models.PartyUser, ID: 0}
	if message.ReceiverUserID != nil {
		cp = models.Counterparty{Kind: models.PartyUser, ID: *message.ReceiverUserID}
	} else if message.ReceiverVisitorID != nil {
		cp = models.Counterparty{Kind: models.PartyVisitor, ID: *message.ReceiverVisitorID}
	}
	f.threads[cp] = append(f.threads[cp], message)
	return message, nil
}

func (f *fakeConversationStore) MarkThreadRead(ctx context.Context, userID int, cp models.Counterparty) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, cp)
	return 1, nil
}

func (f *fakeConversationStore) CounterpartyName(ctx context.Context, cp models.Counterparty) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.names[cp]
	if !ok {
		return "", models.ErrNoRecord
	}
	return name, nil
}

func conversationWith(cp models.Counterparty, text string, at time.Time, unread int) models.Conversation {
	return models.Conversation{
		Counterparty: cp,
		Name:         "someone",
		LastMessage:  models.Message{Text: text, CreatedAt: at},
		UnreadCount:  unread,
	}
}

func TestSyncerInitialConversationFetch(t *testing.T) {
	store := newFakeStore()
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}
	store.conversations = []models.Conversation{conversationWith(cp, "hello", time.Now(), 1)}

	s := NewConversationSyncer(1, store, time.Hour, nil)
	s.syncConversations(context.Background())

	snap := s.Snapshot()
	if len(snap.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(snap.Conversations))
	}
	if snap.Conversations[0].LastMessage.Text != "hello" {
		t.Errorf("expected last message %q, got %q", "hello", snap.Conversations[0].LastMessage.Text)
	}
	if snap.Conversations[0].UnreadCount != 1 {
		t.Errorf("expected unread count 1, got %d", snap.Conversations[0].UnreadCount)
	}
}

func TestSyncerThreadReplacedWholesale(t *testing.T) {
	store := newFakeStore()
	cp := models.Counterparty{Kind: models.PartyVisitor, ID: 7}
	store.names[cp] = "Ana"
	store.threads[cp] = []models.Message{
		{ID: 1, Text: "first", CreatedAt: time.Now().Add(-time.Minute)},
		{ID: 2, Text: "second", CreatedAt: time.Now()},
	}

	s := NewConversationSyncer(1, store, time.Hour, nil)
	s.Select(context.Background(), cp)

	snap := s.Snapshot()
	if len(snap.Thread) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(snap.Thread))
	}
	if snap.SelectedName != "Ana" {
		t.Errorf("expected selected name Ana, got %q", snap.SelectedName)
	}

	// An unchanged re-fetch must not duplicate anything.
	s.syncThread(context.Background(), cp)
	snap = s.Snapshot()
	if len(snap.Thread) != 2 {
		t.Fatalf("re-fetch duplicated messages: got %d", len(snap.Thread))
	}

	// The store shrinking the thread shrinks the view too.
	store.mu.Lock()
	store.threads[cp] = store.threads[cp][:1]
	store.mu.Unlock()
	s.syncThread(context.Background(), cp)
	snap = s.Snapshot()
	if len(snap.Thread) != 1 {
		t.Fatalf("expected wholesale replace to 1 message, got %d", len(snap.Thread))
	}
}

func TestSyncerStaleConversationFetchDiscarded(t *testing.T) {
	store := newFakeStore()
	s := NewConversationSyncer(1, store, time.Hour, nil)
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}

	older := s.nextSeq()
	newer := s.nextSeq()

	s.applyConversations(newer, []models.Conversation{conversationWith(cp, "newer", time.Now(), 0)})
	s.applyConversations(older, []models.Conversation{conversationWith(cp, "older", time.Now().Add(-time.Hour), 0)})

	snap := s.Snapshot()
	if got := snap.Conversations[0].LastMessage.Text; got != "newer" {
		t.Errorf("stale fetch overwrote state: got %q, want %q", got, "newer")
	}
}

func TestSyncerStaleThreadFetchDiscarded(t *testing.T) {
	store := newFakeStore()
	s := NewConversationSyncer(1, store, time.Hour, nil)
	cp := models.Counterparty{Kind: models.PartyUser, ID: 3}
	s.mu.Lock()
	s.selected = &cp
	s.mu.Unlock()

	older := s.nextSeq()
	newer := s.nextSeq()

	s.applyThread(newer, cp, []models.Message{{ID: 1}, {ID: 2}})
	s.applyThread(older, cp, []models.Message{{ID: 1}})

	snap := s.Snapshot()
	if len(snap.Thread) != 2 {
		t.Errorf("stale thread fetch overwrote state: got %d messages, want 2", len(snap.Thread))
	}
}

func TestSyncerNothingAppliedAfterStop(t *testing.T) {
	store := newFakeStore()
	s := NewConversationSyncer(1, store, time.Hour, nil)
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}

	seq := s.nextSeq()
	s.Stop()

	s.applyConversations(seq, []models.Conversation{conversationWith(cp, "late", time.Now(), 0)})
	snap := s.Snapshot()
	if len(snap.Conversations) != 0 {
		t.Errorf("late completion applied after stop: %d conversations", len(snap.Conversations))
	}
}

func TestSyncerSelectionChangeDiscardsOldThreadFetch(t *testing.T) {
	store := newFakeStore()
	s := NewConversationSyncer(1, store, time.Hour, nil)
	first := models.Counterparty{Kind: models.PartyUser, ID: 2}
	second := models.Counterparty{Kind: models.PartyUser, ID: 3}

	s.mu.Lock()
	s.selected = &second
	s.mu.Unlock()

	s.applyThread(s.nextSeq(), first, []models.Message{{ID: 99}})
	snap := s.Snapshot()
	if len(snap.Thread) != 0 {
		t.Errorf("thread for a stale selection was applied: %d messages", len(snap.Thread))
	}
}

func TestSyncerSendFailurePreservesState(t *testing.T) {
	store := newFakeStore()
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}
	store.names[cp] = "Bruno"
	store.threads[cp] = []models.Message{{ID: 1, Text: "existing"}}

	s := NewConversationSyncer(1, store, time.Hour, nil)
	s.Select(context.Background(), cp)

	store.mu.Lock()
	store.createErr = errors.New("store unavailable")
	store.mu.Unlock()

	_, err := s.Send(context.Background(), models.SendMessageRequest{
		ReceiverKind: models.PartyUser,
		ReceiverID:   2,
		Text:         "will fail",
	})
	if err == nil {
		t.Fatal("expected send error")
	}

	snap := s.Snapshot()
	if len(snap.Thread) != 1 || snap.Thread[0].Text != "existing" {
		t.Errorf("failed send disturbed the thread: %+v", snap.Thread)
	}
}

func TestSyncerSendRefreshesOpenThread(t *testing.T) {
	store := newFakeStore()
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}
	store.names[cp] = "Bruno"

	s := NewConversationSyncer(1, store, time.Hour, nil)
	s.Select(context.Background(), cp)

	created, err := s.Send(context.Background(), models.SendMessageRequest{
		ReceiverKind: models.PartyUser,
		ReceiverID:   2,
		Text:         "oi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected the stored message back")
	}

	snap := s.Snapshot()
	if len(snap.Thread) != 1 || snap.Thread[0].Text != "oi" {
		t.Errorf("open thread was not refreshed after send: %+v", snap.Thread)
	}
}

func TestSyncerSendValidation(t *testing.T) {
	s := NewConversationSyncer(1, newFakeStore(), time.Hour, nil)

	if _, err := s.Send(context.Background(), models.SendMessageRequest{ReceiverKind: models.PartyUser, ReceiverID: 2, Text: "   "}); err == nil {
		t.Error("expected error for blank text")
	}
	if _, err := s.Send(context.Background(), models.SendMessageRequest{ReceiverKind: "bot", ReceiverID: 2, Text: "hi"}); !errors.Is(err, models.ErrInvalidParty) {
		t.Errorf("expected ErrInvalidParty, got %v", err)
	}
}

func TestSyncerMarkReadRequiresSelection(t *testing.T) {
	store := newFakeStore()
	s := NewConversationSyncer(1, store, time.Hour, nil)

	if err := s.MarkRead(context.Background()); err == nil {
		t.Error("expected error with no thread selected")
	}

	cp := models.Counterparty{Kind: models.PartyVisitor, ID: 4}
	store.names[cp] = "Carla"
	s.Select(context.Background(), cp)
	if err := s.MarkRead(context.Background()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if len(store.markedRead) != 1 || store.markedRead[0] != cp {
		t.Errorf("expected mark read against %+v, got %+v", cp, store.markedRead)
	}
}

func TestSyncerKeepsEntryWhenFetchIsNotNewer(t *testing.T) {
	store := newFakeStore()
	s := NewConversationSyncer(1, store, time.Hour, nil)
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}
	at := time.Now()

	s.applyConversations(s.nextSeq(), []models.Conversation{conversationWith(cp, "kept", at, 3)})

	// Same last-message timestamp: the recorded entry survives even if
	// the fetched copy differs in other fields.
	refetched := conversationWith(cp, "kept", at, 0)
	refetched.Name = "renamed"
	s.applyConversations(s.nextSeq(), []models.Conversation{refetched})

	snap := s.Snapshot()
	if snap.Conversations[0].UnreadCount != 3 {
		t.Errorf("entry with non-newer last message was replaced: unread %d, want 3", snap.Conversations[0].UnreadCount)
	}

	// A genuinely newer last message replaces the entry.
	s.applyConversations(s.nextSeq(), []models.Conversation{conversationWith(cp, "fresh", at.Add(time.Second), 1)})
	snap = s.Snapshot()
	if snap.Conversations[0].LastMessage.Text != "fresh" {
		t.Errorf("newer entry was not applied: %q", snap.Conversations[0].LastMessage.Text)
	}
}

func TestSyncerStartStop(t *testing.T) {
	store := newFakeStore()
	cp := models.Counterparty{Kind: models.PartyUser, ID: 2}
	store.conversations = []models.Conversation{conversationWith(cp, "hi", time.Now(), 0)}

	s := NewConversationSyncer(1, store, 10*time.Millisecond, nil)
	s.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(s.Snapshot().Conversations) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(s.Snapshot().Conversations) != 1 {
		t.Fatal("initial sync never happened")
	}

	s.Stop()

	// After Stop the loop is gone; a store change must not show up.
	store.mu.Lock()
	store.conversations = append(store.conversations, conversationWith(models.Counterparty{Kind: models.PartyUser, ID: 9}, "late", time.Now(), 0))
	store.mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	if len(s.Snapshot().Conversations) != 1 {
		t.Error("syncer kept applying after stop")
	}
}

func TestSyncerIdleFor(t *testing.T) {
	s := NewConversationSyncer(1, newFakeStore(), time.Hour, nil)
	if s.IdleFor(time.Minute) {
		t.Error("fresh syncer reported idle")
	}
	s.mu.Lock()
	s.lastAccess = time.Now().Add(-2 * time.Minute)
	s.mu.Unlock()
	if !s.IdleFor(time.Minute) {
		t.Error("stale syncer not reported idle")
	}
}
