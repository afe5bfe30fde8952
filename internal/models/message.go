package models

import "time"

// Party kinds for message endpoints. A message endpoint is either a
// registered user or an anonymous visitor, never both.
const (
	PartyUser    = "user"
	PartyVisitor = "visitor"
)

// Counterparty identifies the other side of a conversation.
type Counterparty struct {
	Kind string `json:"kind"`
	ID   int    `json:"id"`
}

type Message struct {
	ID                int        `json:"id"`
	SenderUserID      *int       `json:"sender_user_id,omitempty"`
	SenderVisitorID   *int       `json:"sender_visitor_id,omitempty"`
	ReceiverUserID    *int       `json:"receiver_user_id,omitempty"`
	ReceiverVisitorID *int       `json:"receiver_visitor_id,omitempty"`
	Text              string     `json:"text"`
	CreatedAt         time.Time  `json:"created_at"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
}

// Sender returns the message's sender as a counterparty reference.
func (m Message) Sender() Counterparty {
	if m.SenderVisitorID != nil {
		return Counterparty{Kind: PartyVisitor, ID: *m.SenderVisitorID}
	}
	if m.SenderUserID != nil {
		return Counterparty{Kind: PartyUser, ID: *m.SenderUserID}
	}
	return Counterparty{}
}

// Receiver returns the message's receiver as a counterparty reference.
func (m Message) Receiver() Counterparty {
	if m.ReceiverVisitorID != nil {
		return Counterparty{Kind: PartyVisitor, ID: *m.ReceiverVisitorID}
	}
	if m.ReceiverUserID != nil {
		return Counterparty{Kind: PartyUser, ID: *m.ReceiverUserID}
	}
	return Counterparty{}
}

// Conversation groups every message between the current user and one
// counterparty. It is rebuilt from the flat messages table on every
// fetch; nothing here is persisted.
type Conversation struct {
	Counterparty Counterparty `json:"counterparty"`
	Name         string       `json:"name"`
	LastMessage  Message      `json:"last_message"`
	UnreadCount  int          `json:"unread_count"`
}

type SendMessageRequest struct {
	ReceiverKind string `json:"receiver_kind"`
	ReceiverID   int    `json:"receiver_id"`
	Text         string `json:"text"`
}
