package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a marketplace listing. Price is stored in the smallest currency unit.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       uint64    `gorm:"not null" json:"price"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Condition   string    `gorm:"type:varchar(100);not null" json:"condition"`
	Faculty     string    `gorm:"type:varchar(100);not null;index" json:"faculty"`
	Images      []string  `gorm:"type:jsonb;serializer:json" json:"images"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Owner is what clients see of User
	Owner *Owner `gorm:"-" json:"user,omitempty"`
}

// Owner is the public part of a seller's account.
type Owner struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AfterFind runs after preloads, so a loaded User becomes the public Owner.
func (p *Product) AfterFind(tx *gorm.DB) error {
	if p.User != nil {
		p.Owner = &Owner{ID: p.User.ID, Name: p.User.Name}
	}
	return nil
}
