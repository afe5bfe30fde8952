package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"imovelBack/internal/models"
)

type MessageRepository struct {
	Db *sql.DB
}

func (r *MessageRepository) CreateMessage(ctx context.Context, message models.Message) (models.Message, error) {
	query := `
        INSERT INTO messages (sender_user_id, sender_visitor_id, receiver_user_id, receiver_visitor_id, text, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	message.CreatedAt = time.Now()
	result, err := r.Db.ExecContext(ctx, query,
		message.SenderUserID, message.SenderVisitorID,
		message.ReceiverUserID, message.ReceiverVisitorID,
		message.Text, message.CreatedAt,
	)
	if err != nil {
		return models.Message{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	message.ID = int(id)
	return message, nil
}

// GetThread returns every message between the user and one
// counterparty in ascending creation order. The ordering is enforced
// here, by the query; callers must preserve it as-is.
func (r *MessageRepository) GetThread(ctx context.Context, userID int, cp models.Counterparty) ([]models.Message, error) {
	var query string
	var args []interface{}

	switch cp.Kind {
	case models.PartyUser:
		query = `
            SELECT id, sender_user_id, sender_visitor_id, receiver_user_id, receiver_visitor_id, text, created_at, read_at
            FROM messages
            WHERE (sender_user_id = ? AND receiver_user_id = ?) OR (sender_user_id = ? AND receiver_user_id = ?)
            ORDER BY created_at ASC, id ASC`
		args = []interface{}{userID, cp.ID, cp.ID, userID}
	case models.PartyVisitor:
		query = `
            SELECT id, sender_user_id, sender_visitor_id, receiver_user_id, receiver_visitor_id, text, created_at, read_at
            FROM messages
            WHERE (sender_user_id = ? AND receiver_visitor_id = ?) OR (sender_visitor_id = ? AND receiver_user_id = ?)
            ORDER BY created_at ASC, id ASC`
		args = []interface{}{userID, cp.ID, cp.ID, userID}
	default:
		return nil, models.ErrInvalidParty
	}

	rows, err := r.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.SenderUserID, &m.SenderVisitorID, &m.ReceiverUserID, &m.ReceiverVisitorID,
			&m.Text, &m.CreatedAt, &m.ReadAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetConversationsByUserID rebuilds the user's conversation summaries
// from the flat messages table: one entry per distinct counterparty
// with its most recent message and the count of unread messages
// addressed to the user. Nothing is patched incrementally; every call
// recomputes from scratch.
func (r *MessageRepository) GetConversationsByUserID(ctx context.Context, userID int) ([]models.Conversation, error) {
	userConvs, err := r.userConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	visitorConvs, err := r.visitorConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations := append(userConvs, visitorConvs...)
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}

func (r *MessageRepository) userConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	query := `
        SELECT t.party_id, u.name,
               m.id, m.sender_user_id, m.sender_visitor_id, m.receiver_user_id, m.receiver_visitor_id,
               m.text, m.created_at, m.read_at, t.unread
        FROM (
            SELECT CASE WHEN sender_user_id = ? THEN receiver_user_id ELSE sender_user_id END AS party_id,
                   MAX(id) AS last_id,
                   SUM(CASE WHEN receiver_user_id = ? AND read_at IS NULL THEN 1 ELSE 0 END) AS unread
            FROM messages
            WHERE (sender_user_id = ? AND receiver_user_id IS NOT NULL)
               OR (receiver_user_id = ? AND sender_user_id IS NOT NULL)
            GROUP BY party_id
        ) t
        JOIN messages m ON m.id = t.last_id
        JOIN users u ON u.id = t.party_id
        ORDER BY m.created_at DESC`

	return r.queryConversations(ctx, models.PartyUser, query, userID, userID, userID, userID)
}

func (r *MessageRepository) visitorConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	query := `
        SELECT t.party_id, v.name,
               m.id, m.sender_user_id, m.sender_visitor_id, m.receiver_user_id, m.receiver_visitor_id,
               m.text, m.created_at, m.read_at, t.unread
        FROM (
            SELECT COALESCE(sender_visitor_id, receiver_visitor_id) AS party_id,
                   MAX(id) AS last_id,
                   SUM(CASE WHEN receiver_user_id = ? AND read_at IS NULL THEN 1 ELSE 0 END) AS unread
            FROM messages
            WHERE (receiver_user_id = ? AND sender_visitor_id IS NOT NULL)
               OR (sender_user_id = ? AND receiver_visitor_id IS NOT NULL)
            GROUP BY party_id
        ) t
        JOIN messages m ON m.id = t.last_id
        JOIN visitors v ON v.id = t.party_id
        ORDER BY m.created_at DESC`

	return r.queryConversations(ctx, models.PartyVisitor, query, userID, userID, userID)
}

func (r *MessageRepository) queryConversations(ctx context.Context, kind string, query string, args ...interface{}) ([]models.Conversation, error) {
	rows, err := r.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		var m models.Message
		if err := rows.Scan(
			&c.Counterparty.ID, &c.Name,
			&m.ID, &m.SenderUserID, &m.SenderVisitorID, &m.ReceiverUserID, &m.ReceiverVisitorID,
			&m.Text, &m.CreatedAt, &m.ReadAt, &c.UnreadCount,
		); err != nil {
			return nil, err
		}
		c.Counterparty.Kind = kind
		c.LastMessage = m
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// MarkThreadRead stamps read_at on every unread message from the
// counterparty addressed to the user. The next conversation fetch
// recomputes the unread count from these rows.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, userID int, cp models.Counterparty) (int64, error) {
	var query string
	switch cp.Kind {
	case models.PartyUser:
		query = `UPDATE messages SET read_at = ? WHERE receiver_user_id = ? AND sender_user_id = ? AND read_at IS NULL`
	case models.PartyVisitor:
		query = `UPDATE messages SET read_at = ? WHERE receiver_user_id = ? AND sender_visitor_id = ? AND read_at IS NULL`
	default:
		return 0, models.ErrInvalidParty
	}

	result, err := r.Db.ExecContext(ctx, query, time.Now(), userID, cp.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// LatestMessageAt returns the creation time of the newest message
// addressed to the user, or false when there are none. Feeds the
// coarse "anything new since my last visit" badge, which is tracked
// separately from per-conversation unread counts.
func (r *MessageRepository) LatestMessageAt(ctx context.Context, userID int) (time.Time, bool, error) {
	var latest sql.NullTime
	query := `SELECT MAX(created_at) FROM messages WHERE receiver_user_id = ?`
	err := r.Db.QueryRowContext(ctx, query, userID).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time, true, nil
}

// CounterpartyName resolves the display name for a thread header.
func (r *MessageRepository) CounterpartyName(ctx context.Context, cp models.Counterparty) (string, error) {
	var query string
	switch cp.Kind {
	case models.PartyUser:
		query = `SELECT name FROM users WHERE id = ?`
	case models.PartyVisitor:
		query = `SELECT name FROM visitors WHERE id = ?`
	default:
		return "", models.ErrInvalidParty
	}

	var name string
	err := r.Db.QueryRowContext(ctx, query, cp.ID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNoRecord
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
