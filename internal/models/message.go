package models

import (
	"time"
)

// Message is immutable once stored.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Content        string    `gorm:"type:text;not null" json:"message"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	//Foreign Key Relationship
	Conversation *Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
	User         *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
