package models

import "time"

// Favorite joins a user to a product they marked. The composite primary key
// keeps the pair unique.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ProductID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"product_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}
