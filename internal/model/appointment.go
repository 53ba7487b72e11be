package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment status values. The lifecycle only moves along
// PENDING -> APPROVED -> COMPLETED and PENDING -> REJECTED; REJECTED and
// COMPLETED are terminal.
const (
	AppointmentPending   = "PENDING"
	AppointmentApproved  = "APPROVED"
	AppointmentRejected  = "REJECTED"
	AppointmentCompleted = "COMPLETED"
)

// Appointment type values. SCHEDULED requests go through secretarial review;
// ONSITE appointments are created by staff at the desk and start APPROVED.
const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentOnSite    = "ONSITE"
)

// Appointment is a planned visit request with a lifecycle independent of
// physical presence.
type Appointment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VisitorID   *uuid.UUID `gorm:"type:uuid;index" json:"visitor_id"` // Nullable for desk-created walk-in appointments
	Visitor     *User      `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
	VisitorName string     `gorm:"type:varchar(255);not null" json:"visitor_name"`
	Email       string     `gorm:"type:varchar(255)" json:"email"`
	Phone       string     `gorm:"type:varchar(20)" json:"phone"`
	Date        time.Time  `gorm:"type:date;not null;index" json:"date"`
	Time        string     `gorm:"type:varchar(5);not null" json:"time"` // HH:MM
	Department  string     `gorm:"type:varchar(100);not null;index" json:"department"`
	Host        string     `gorm:"type:varchar(255);not null;index" json:"host"` // Person to meet
	Reason      string     `gorm:"type:text;not null" json:"reason"`
	Type        string     `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"type"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	// AccessCode is non-nil exactly while the appointment is APPROVED and no
	// visit has been opened against it; check-in consumes it.
	AccessCode *string `gorm:"type:varchar(16);uniqueIndex" json:"access_code,omitempty"`

	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	Reviewer        *User      `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsTerminal reports whether no further status transitions are permitted.
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentRejected || a.Status == AppointmentCompleted
}

// OwnedBy reports whether the appointment belongs to the given user.
func (a *Appointment) OwnedBy(userID uuid.UUID) bool {
	return a.VisitorID != nil && *a.VisitorID == userID
}
