package model

import (
	"time"

	"github.com/google/uuid"
)

// Visit is the record of physical presence on site: opened by an agent
// check-in, closed by an agent check-out, retained indefinitely for audit.
//
// The partial unique index on visitor_name is the store-side half of the
// one-open-visit-per-visitor rule: concurrent check-ins that both pass the
// in-transaction lookup still collide on insert.
type Visit struct {
	ID            uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppointmentID *uuid.UUID   `gorm:"type:uuid;index" json:"appointment_id"` // nil for walk-ins with no prior appointment
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	VisitorName   string       `gorm:"type:varchar(255);not null;index:idx_visits_open_visitor,unique,where:check_out_time IS NULL" json:"visitor_name"`
	Department    string       `gorm:"type:varchar(100)" json:"department"`
	Reason        string       `gorm:"type:text" json:"reason"`
	CheckInTime   time.Time    `gorm:"not null;index" json:"check_in_time"`
	CheckOutTime  *time.Time   `json:"check_out_time"` // nil while the visitor is on site
	AgentID       *uuid.UUID   `gorm:"type:uuid" json:"agent_id,omitempty"`
	Agent         *User        `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// IsOpen reports whether the visitor is still on site.
func (v *Visit) IsOpen() bool {
	return v.CheckOutTime == nil
}
