package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"imovelBack/internal/models"
	"imovelBack/internal/repositories"
)

type MessageService struct {
	MessageRepo  *repositories.MessageRepository
	LastSeenRepo *repositories.LastSeenRepository
}

// SendMessage submits a user's message to the store. Nothing is
// applied optimistically: callers refresh their thread only after
// this returns without error.
func (s *MessageService) SendMessage(ctx context.Context, senderUserID int, req models.SendMessageRequest) (models.Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return models.Message{}, errors.New("message text is required")
	}

	message := models.Message{
		SenderUserID: &senderUserID,
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

	return s.MessageRepo.CreateMessage(ctx, message)
}

func (s *MessageService) GetConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	return s.MessageRepo.GetConversationsByUserID(ctx, userID)
}

func (s *MessageService) GetThread(ctx context.Context, userID int, cp models.Counterparty) ([]models.Message, error) {
	return s.MessageRepo.GetThread(ctx, userID, cp)
}

func (s *MessageService) MarkThreadRead(ctx context.Context, userID int, cp models.Counterparty) (int64, error) {
	return s.MessageRepo.MarkThreadRead(ctx, userID, cp)
}

func (s *MessageService) CounterpartyName(ctx context.Context, cp models.Counterparty) (string, error) {
	return s.MessageRepo.CounterpartyName(ctx, cp)
}

// HasUnreadSinceLastVisit implements the coarse inbox badge: compare
// the newest message addressed to the user against the persisted
// "last seen" marker, then advance the marker. Called once per inbox
// mount and not again within the session. This signal is independent
// from the per-conversation unread counts and the two are not
// reconciled; see DESIGN.md.
func (s *MessageService) HasUnreadSinceLastVisit(ctx context.Context, userID int) (bool, error) {
	latest, hasMessages, err := s.MessageRepo.LatestMessageAt(ctx, userID)
	if err != nil {
		return false, err
	}

	lastSeen, hasMarker, err := s.LastSeenRepo.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	if err := s.LastSeenRepo.Set(ctx, userID, time.Now()); err != nil {
		return false, err
	}

	if !hasMessages {
		return false, nil
	}
	if !hasMarker {
		return true, nil
	}
	return latest.After(lastSeen), nil
}
