package models

import (
	"time"

	"gorm.io/datatypes"
)

// Message is one inbox entry. A direct message has RecipientID set; a
// broadcast is fanned out into one row per recipient with the originating
// audience recorded in Audience.
type Message struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	SenderID    string         `json:"sender_id" gorm:"type:uuid;not null;index"`
	RecipientID string         `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Subject     string         `json:"subject" gorm:"not null;size:200"`
	Body        string         `json:"body" gorm:"not null;size:5000"`
	Audience    *UserRole      `json:"audience,omitempty" gorm:"size:32"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	ReadAt      *time.Time     `json:"read_at"`

	Sender    *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient *User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`

	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
