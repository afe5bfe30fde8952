package main

import (
	"context"
	"log"
	"time"

	services "imovelBack/internal/services"
)

const (
	inboxJanitorInterval = 1 * time.Minute
	inboxMaxIdle         = 5 * time.Minute
)

// startInboxJanitor reaps inbox loops whose owner stopped polling.
// A closed browser tab never sends an explicit unmount, so idleness is
// the only signal left.
func startInboxJanitor(ctx context.Context, manager *services.InboxManager, infoLog *log.Logger) {
	if manager == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(inboxJanitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if reaped := manager.ReapIdle(inboxMaxIdle); reaped > 0 && infoLog != nil {
					infoLog.Printf("inbox janitor: reaped %d idle inbox sessions", reaped)
				}
			}
		}
	}()
}
