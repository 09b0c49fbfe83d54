package models

import "time"

type ActivityAction string

const (
	ActionCreated ActivityAction = "created"
	ActionUpdated ActivityAction = "updated"
	ActionDeleted ActivityAction = "deleted"
)

// Activity is one audit log entry. Subjects are not foreign keys so entries
// survive the deletion of what they describe.
type Activity struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CauserID    *uint          `gorm:"index" json:"causer_id"`
	Action      ActivityAction `gorm:"type:varchar(20);not null" json:"action"`
	SubjectType string         `gorm:"type:varchar(50);not null;index:idx_activity_subject" json:"subject_type"`
	SubjectID   uint           `gorm:"not null;index:idx_activity_subject" json:"subject_id"`
	Description string         `gorm:"type:varchar(255)" json:"description"`
	Properties  map[string]any `gorm:"type:jsonb;serializer:json" json:"properties"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`

	Causer *User `gorm:"foreignKey:CauserID;constraint:OnDelete:SET NULL" json:"causer,omitempty"`
}
