package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"imovelBack/internal/models"
	"imovelBack/internal/normalize"
	"imovelBack/internal/repositories"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type VisitorService struct {
	VisitorRepo *repositories.VisitorRepository
	ListingRepo *repositories.ListingRepository
	MessageRepo *repositories.MessageRepository
}

// Contact handles the public contact form: upsert the visitor by
// email, then record a message from the visitor to the listing owner.
// All validation happens before any store call.
func (s *VisitorService) Contact(ctx context.Context, req models.ContactRequest) (models.Visitor, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.Visitor{}, errors.New("name is required")
	}
	email := normalize.Email(req.Email)
	if !emailPattern.MatchString(email) {
		return models.Visitor{}, errors.New("malformed email address")
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		return models.Visitor{}, errors.New("malformed phone number")
	}
	if strings.TrimSpace(req.Text) == "" {
		return models.Visitor{}, errors.New("message text is required")
	}

	listing, err := s.ListingRepo.GetListingByID(ctx, req.ListingID)
	if err != nil {
		return models.Visitor{}, err
	}

	visitor := models.Visitor{
		Name:  strings.TrimSpace(req.Name),
		Email: email,
	}
	if req.Phone != "" {
		phone := req.Phone
		visitor.Phone = &phone
	}

	visitor, err = s.VisitorRepo.UpsertVisitor(ctx, visitor)
	if err != nil {
		return models.Visitor{}, err
	}

	message := models.Message{
		SenderVisitorID: &visitor.ID,
		ReceiverUserID:  &listing.UserID,
		Text:            req.Text,
	}
	if _, err := s.MessageRepo.CreateMessage(ctx, message); err != nil {
		return models.Visitor{}, err
	}

	return visitor, nil
}

func (s *VisitorService) GetVisitorByID(ctx context.Context, id int) (models.Visitor, error) {
	return s.VisitorRepo.GetVisitorByID(ctx, id)
}
