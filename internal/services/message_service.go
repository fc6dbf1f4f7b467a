package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openedu-labs/lms-service/internal/events"
	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type messageService struct {
	repo           repositories.Repository
	identity       IdentityService
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewMessageService(repo repositories.Repository, identity IdentityService, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) MessageService {
	return &messageService{
		repo:           repo,
		identity:       identity,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// Send delivers a direct message. The recipient may be named by any
// identifier token shape; it is canonicalized before the write.
func (s *messageService) Send(ctx context.Context, req *SendMessageRequest, actor *models.User) (*models.Message, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	recipientID, err := s.identity.Resolve(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}
	if _, err := s.identity.GetUser(ctx, recipientID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:    actor.ID,
		RecipientID: recipientID,
		Subject:     req.Subject,
		Body:        req.Body,
	}

	if err := s.repo.Message().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.publishEvent(ctx, "message.sent", map[string]interface{}{
		"message_id":   message.ID,
		"sender_id":    actor.ID,
		"recipient_id": recipientID,
	})

	return message, nil
}

// Broadcast fans a message out to every user holding the audience role.
func (s *messageService) Broadcast(ctx context.Context, req *BroadcastRequest, actor *models.User) (*BroadcastResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateBroadcast(req); len(errs) > 0 {
		return nil, errs
	}

	audience := models.NormalizeRole(req.Audience)
	recipients, err := s.repo.User().ListByRole(ctx, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcast audience: %w", err)
	}

	messages := make([]*models.Message, 0, len(recipients))
	for _, recipient := range recipients {
		if recipient.ID == actor.ID {
			continue
		}
		messages = append(messages, &models.Message{
			SenderID:    actor.ID,
			RecipientID: recipient.ID,
			Subject:     req.Subject,
			Body:        req.Body,
			Audience:    &audience,
		})
	}

	if err := s.repo.Message().CreateBatch(ctx, messages); err != nil {
		return nil, fmt.Errorf("failed to broadcast: %w", err)
	}

	s.logger.Info("Broadcast sent",
		"sender_id", actor.ID,
		"audience", audience,
		"recipients", len(messages))

	s.publishEvent(ctx, "message.broadcast", map[string]interface{}{
		"sender_id":  actor.ID,
		"audience":   audience,
		"recipients": len(messages),
	})

	return &BroadcastResponse{Audience: audience, Recipients: len(messages)}, nil
}

func (s *messageService) Inbox(ctx context.Context, actor *models.User, unreadOnly bool, page, size int) (*InboxResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	messages, total, err := s.repo.Message().ListInbox(ctx, actor.ID, repositories.MessageFilters{
		Unread: unreadOnly,
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	return &InboxResponse{Messages: messages, Total: total, Unread: unreadOnly}, nil
}

func (s *messageService) MarkRead(ctx context.Context, id uint, actor *models.User) error {
	if err := s.repo.Message().MarkRead(ctx, id, actor.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

func (s *messageService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", eventType)
	}
}
