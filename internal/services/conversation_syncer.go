package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"imovelBack/internal/models"
)

// DefaultSyncInterval is the fixed polling period of a mounted inbox
// view. There is no push channel; the next tick is the only retry.
const DefaultSyncInterval = 2 * time.Second

// ConversationStore is the remote source of truth the syncer
// reconciles against. *repositories.MessageRepository satisfies it.
type ConversationStore interface {
	GetConversationsByUserID(ctx context.Context, userID int) ([]models.Conversation, error)
	GetThread(ctx context.Context, userID int, cp models.Counterparty) ([]models.Message, error)
	CreateMessage(ctx context.Context, message models.Message) (models.Message, error)
	MarkThreadRead(ctx context.Context, userID int, cp models.Counterparty) (int64, error)
	CounterpartyName(ctx context.Context, cp models.Counterparty) (string, error)
}

// InboxSnapshot is the state a mounted messaging view renders.
type InboxSnapshot struct {
	Conversations []models.Conversation `json:"conversations"`
	Selected      *models.Counterparty  `json:"selected,omitempty"`
	SelectedName  string                `json:"selected_name,omitempty"`
	Thread        []models.Message      `json:"thread,omitempty"`
	SyncedAt      time.Time             `json:"synced_at"`
}

// ConversationSyncer keeps one user's view of their message threads
// eventually consistent with the store. One goroutine per mounted
// view: an initial full fetch, then a fetch-and-diff pass every
// interval until Stop. Every fetch carries a monotonic sequence
// number and state is only applied when the fetch is newer than the
// last applied one, so a stale completion can never overwrite newer
// state. After Stop nothing is applied at all.
type ConversationSyncer struct {
	userID   int
	store    ConversationStore
	interval time.Duration
	errorLog *log.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.Mutex
	stopped       bool
	conversations []models.Conversation
	latest        map[models.Counterparty]time.Time
	selected      *models.Counterparty
	selectedName  string
	thread        []models.Message
	syncedAt      time.Time
	lastAccess    time.Time

	seq       uint64
	convSeq   uint64
	threadSeq uint64
}

func NewConversationSyncer(userID int, store ConversationStore, interval time.Duration, errorLog *log.Logger) *ConversationSyncer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &ConversationSyncer{
		userID:     userID,
		store:      store,
		interval:   interval,
		errorLog:   errorLog,
		done:       make(chan struct{}),
		latest:     make(map[models.Counterparty]time.Time),
		lastAccess: time.Now(),
	}
}

// Start launches the polling goroutine. The view is considered
// mounted until Stop is called.
func (s *ConversationSyncer) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(runCtx)
}

func (s *ConversationSyncer) run(ctx context.Context) {
	defer close(s.done)

	// Initial load. A failure is logged and the loop still moves on
	// to polling: the view renders whatever it has.
	s.syncConversations(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncConversations(ctx)
			if cp := s.selectedCounterparty(); cp != nil {
				s.syncThread(ctx, *cp)
			}
		}
	}
}

// Stop is the unmount boundary: the timer is cancelled and any
// in-flight fetch that completes afterwards is discarded, not applied.
func (s *ConversationSyncer) Stop() {
	s.mu.Lock()
	s.stopped = true
	started := s.cancel != nil
	s.mu.Unlock()

	if !started {
		return
	}
	s.cancel()
	<-s.done
}

func (s *ConversationSyncer) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *ConversationSyncer) selectedCounterparty() *models.Counterparty {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	cp := *s.selected
	return &cp
}

func (s *ConversationSyncer) syncConversations(ctx context.Context) {
	seq := s.nextSeq()
	conversations, err := s.store.GetConversationsByUserID(ctx, s.userID)
	if err != nil {
		if !errors.Is(err, context.Canceled) && s.errorLog != nil {
			s.errorLog.Printf("inbox sync: user %d: fetch conversations: %v", s.userID, err)
		}
		return
	}
	s.applyConversations(seq, conversations)
}

// applyConversations merges a fetched summary set into the view. An
// entry is replaced only when its latest message is newer than the
// recorded one for that counterparty; otherwise the previous entry is
// kept. The fetched ordering wins either way.
func (s *ConversationSyncer) applyConversations(seq uint64, fetched []models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || seq <= s.convSeq {
		return
	}

	previous := make(map[models.Counterparty]models.Conversation, len(s.conversations))
	for _, c := range s.conversations {
		previous[c.Counterparty] = c
	}

	merged := make([]models.Conversation, 0, len(fetched))
	latest := make(map[models.Counterparty]time.Time, len(fetched))
	for _, c := range fetched {
		if prev, ok := previous[c.Counterparty]; ok {
			if recorded, ok := s.latest[c.Counterparty]; ok && !c.LastMessage.CreatedAt.After(recorded) {
				c = prev
			}
		}
		merged = append(merged, c)
		latest[c.Counterparty] = c.LastMessage.CreatedAt
	}

	s.conversations = merged
	s.latest = latest
	s.convSeq = seq
	s.syncedAt = time.Now()
}

func (s *ConversationSyncer) syncThread(ctx context.Context, cp models.Counterparty) {
	seq := s.nextSeq()
	thread, err := s.store.GetThread(ctx, s.userID, cp)
	if err != nil {
		if !errors.Is(err, context.Canceled) && s.errorLog != nil {
			s.errorLog.Printf("inbox sync: user %d: fetch thread %s/%d: %v", s.userID, cp.Kind, cp.ID, err)
		}
		return
	}
	s.applyThread(seq, cp, thread)
}

// applyThread replaces the open thread wholesale — never append-merge,
// so a re-fetch of an unchanged thread is idempotent and duplicates
// cannot creep in. The server-provided ordering is preserved as-is.
func (s *ConversationSyncer) applyThread(seq uint64, cp models.Counterparty, thread []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || seq <= s.threadSeq {
		return
	}
	if s.selected == nil || *s.selected != cp {
		return
	}

	s.thread = thread
	s.threadSeq = seq
	s.syncedAt = time.Now()
}

// Select opens a thread: the selection changes which thread the
// polling passes refresh, and triggers one immediate full-history
// fetch plus a display-name lookup. In-flight polling is not
// cancelled.
func (s *ConversationSyncer) Select(ctx context.Context, cp models.Counterparty) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.selected = &cp
	s.selectedName = ""
	s.thread = nil
	s.lastAccess = time.Now()
	s.mu.Unlock()

	name, err := s.store.CounterpartyName(ctx, cp)
	if err != nil {
		if !errors.Is(err, context.Canceled) && s.errorLog != nil {
			s.errorLog.Printf("inbox sync: user %d: counterparty name %s/%d: %v", s.userID, cp.Kind, cp.ID, err)
		}
	} else {
		s.mu.Lock()
		if !s.stopped && s.selected != nil && *s.selected == cp {
			s.selectedName = name
		}
		s.mu.Unlock()
	}

	s.syncThread(ctx, cp)
}

// Send submits a message to the store first; only on success is the
// open thread re-fetched. On failure prior state stays intact and the
// caller keeps its compose content — there is no automatic retry.
func (s *ConversationSyncer) Send(ctx context.Context, req models.SendMessageRequest) (models.Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return models.Message{}, errors.New("message text is required")
	}

	message := models.Message{
		SenderUserID: &s.userID,
		Text:         req.Text,
	}
	switch req.ReceiverKind {
	case models.PartyUser:
		message.ReceiverUserID = &req.ReceiverID
	case models.PartyVisitor:
		message.ReceiverVisitorID = &req.ReceiverID
	default:
		return models.Message{}, models.ErrInvalidParty
	}

	created, err := s.store.CreateMessage(ctx, message)
	if err != nil {
		return models.Message{}, err
	}

	receiver := models.Counterparty{Kind: req.ReceiverKind, ID: req.ReceiverID}
	if cp := s.selectedCounterparty(); cp != nil && *cp == receiver {
		s.syncThread(ctx, receiver)
	}
	return created, nil
}

// MarkRead stamps the open thread's unread messages. The next
// conversations pass recomputes the unread count from the store.
func (s *ConversationSyncer) MarkRead(ctx context.Context) error {
	cp := s.selectedCounterparty()
	if cp == nil {
		return errors.New("no thread selected")
	}
	_, err := s.store.MarkThreadRead(ctx, s.userID, *cp)
	return err
}

// Snapshot returns a copy of the current view state.
func (s *ConversationSyncer) Snapshot() InboxSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccess = time.Now()

	snapshot := InboxSnapshot{
		Conversations: make([]models.Conversation, len(s.conversations)),
		SelectedName:  s.selectedName,
		SyncedAt:      s.syncedAt,
	}
	copy(snapshot.Conversations, s.conversations)
	if s.selected != nil {
		cp := *s.selected
		snapshot.Selected = &cp
	}
	if s.thread != nil {
		snapshot.Thread = make([]models.Message, len(s.thread))
		copy(snapshot.Thread, s.thread)
	}
	return snapshot
}

// IdleFor reports whether the view has gone unread for longer than
// maxIdle, meaning it can be treated as unmounted.
func (s *ConversationSyncer) IdleFor(maxIdle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastAccess) > maxIdle
}
