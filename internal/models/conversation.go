package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a thread between two distinct users about one product.
// User1 is whoever opened it. UserLowID/UserHighID hold the same pair sorted
// so one unique index covers both orderings.
type Conversation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	User1ID    uint      `gorm:"not null;index" json:"user1_id"`
	User2ID    uint      `gorm:"not null;index" json:"user2_id"`
	ProductID  uint      `gorm:"not null;index;uniqueIndex:idx_conversation_pair,priority:3" json:"product_id"`
	UserLowID  uint      `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:1" json:"-"`
	UserHighID uint      `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:2" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User1   *User    `gorm:"foreignKey:User1ID;constraint:OnDelete:CASCADE" json:"user1,omitempty"`
	User2   *User    `gorm:"foreignKey:User2ID;constraint:OnDelete:CASCADE" json:"user2,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

// CanonicalPair orders two user ids so (a, b) and (b, a) map to the same key.
func CanonicalPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// BeforeSave keeps the canonical pair in sync with the participant columns.
func (c *Conversation) BeforeSave(tx *gorm.DB) error {
	c.UserLowID, c.UserHighID = CanonicalPair(c.User1ID, c.User2ID)
	return nil
}

// HasParticipant reports whether userID is one of the two users.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipantID returns the id of the participant that is not userID.
func (c *Conversation) OtherParticipantID(userID uint) uint {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
