package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// InboxManager owns one ConversationSyncer per signed-in user with a
// mounted messaging view. The first request mounts the view and
// starts its polling loop; a janitor goroutine in cmd stops loops
// that have gone idle.
type InboxManager struct {
	Store    ConversationStore
	Interval time.Duration
	ErrorLog *log.Logger

	baseCtx context.Context

	mu      sync.Mutex
	syncers map[int]*ConversationSyncer
}

func NewInboxManager(ctx context.Context, store ConversationStore, interval time.Duration, errorLog *log.Logger) *InboxManager {
	return &InboxManager{
		Store:    store,
		Interval: interval,
		ErrorLog: errorLog,
		baseCtx:  ctx,
		syncers:  make(map[int]*ConversationSyncer),
	}
}

// Mount returns the user's syncer, creating and starting it on first
// use. The syncer's lifetime is bound to the server context, not the
// mounting request.
func (m *InboxManager) Mount(userID int) *ConversationSyncer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if syncer, ok := m.syncers[userID]; ok {
		return syncer
	}

	syncer := NewConversationSyncer(userID, m.Store, m.Interval, m.ErrorLog)
	syncer.Start(m.baseCtx)
	m.syncers[userID] = syncer
	return syncer
}

// Unmount stops and forgets the user's syncer, if any.
func (m *InboxManager) Unmount(userID int) {
	m.mu.Lock()
	syncer, ok := m.syncers[userID]
	if ok {
		delete(m.syncers, userID)
	}
	m.mu.Unlock()

	if ok {
		syncer.Stop()
	}
}

// ReapIdle stops every syncer whose view has been idle for longer
// than maxIdle and reports how many were stopped.
func (m *InboxManager) ReapIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	var idle []*ConversationSyncer
	for userID, syncer := range m.syncers {
		if syncer.IdleFor(maxIdle) {
			idle = append(idle, syncer)
			delete(m.syncers, userID)
		}
	}
	m.mu.Unlock()

	for _, syncer := range idle {
		syncer.Stop()
	}
	return len(idle)
}
