package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
)

type MessagePostgreSQL struct {
	db *gorm.DB
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &MessagePostgreSQL{db: db}
}

func (m *MessagePostgreSQL) Create(ctx context.Context, message *models.Message) error {
	if err := m.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// CreateBatch inserts the fan-out rows of a broadcast in one statement.
func (m *MessagePostgreSQL) CreateBatch(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := m.db.WithContext(ctx).CreateInBatches(messages, 100).Error; err != nil {
		return fmt.Errorf("failed to create messages: %w", err)
	}
	return nil
}

func (m *MessagePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := m.db.WithContext(ctx).
		Preload("Sender").
		First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

func (m *MessagePostgreSQL) ListInbox(ctx context.Context, recipientID string, filters repositories.MessageFilters) ([]*models.Message, int64, error) {
	query := m.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ?", recipientID)

	if filters.Unread {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inbox: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var messages []*models.Message
	if err := query.Preload("Sender").Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list inbox: %w", err)
	}

	return messages, total, nil
}

// MarkRead marks a message read, scoped to its recipient so a user cannot
// mark another inbox's messages.
func (m *MessagePostgreSQL) MarkRead(ctx context.Context, id uint, recipientID string) error {
	result := m.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
