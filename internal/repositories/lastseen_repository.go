package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LastSeenRepository persists the per-user "last saw the inbox"
// marker in Redis. It backs the coarse unread badge only; the
// per-conversation unread counts come from the messages table and the
// two signals are deliberately not reconciled.
type LastSeenRepository struct {
	Client *redis.Client
}

func lastSeenKey(userID int) string {
	return fmt.Sprintf("last_seen:%d", userID)
}

// Get returns the stored marker, or false when the user has never
// opened the inbox.
func (r *LastSeenRepository) Get(ctx context.Context, userID int) (time.Time, bool, error) {
	value, err := r.Client.Get(ctx, lastSeenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Set records the marker. Written once per inbox mount, not on every
// message view within the session.
func (r *LastSeenRepository) Set(ctx context.Context, userID int, t time.Time) error {
	return r.Client.Set(ctx, lastSeenKey(userID), t.Format(time.RFC3339Nano), 0).Err()
}
