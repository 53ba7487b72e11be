package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification delivery channels. Only the in-app record is handled here;
// actual email/SMS dispatch belongs to an external collaborator.
const (
	NotificationEmail    = "EMAIL"
	NotificationSMS      = "SMS"
	NotificationInternal = "INTERNAL"
)

const (
	NotificationSent = "SENT"
)

// Notification is an in-app message row tied to a lifecycle event
// (approval, rejection, check-in, check-out).
type Notification struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User    *User      `gorm:"foreignKey:UserID" json:"-"`
	Message string     `gorm:"type:text;not null" json:"message"`
	Type    string     `gorm:"type:varchar(20);not null;default:'INTERNAL'" json:"type"`
	Status  string     `gorm:"type:varchar(20);not null;default:'SENT'" json:"status"`
	VisitID *uuid.UUID `gorm:"type:uuid" json:"visit_id,omitempty"`
	Read    bool       `gorm:"default:false;index" json:"read"`
	SentAt  time.Time  `gorm:"autoCreateTime" json:"sent_at"`
}
