package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionRegisterVisitor = "REGISTER_VISITOR"
	ActionCreateUser      = "CREATE_USER"
	ActionUpdateUser      = "UPDATE_USER"
	ActionDeleteUser      = "DELETE_USER"

	// Appointment lifecycle actions
	ActionSubmitAppointment  = "SUBMIT_APPOINTMENT"
	ActionApproveAppointment = "APPROVE_APPOINTMENT"
	ActionRejectAppointment  = "REJECT_APPOINTMENT"
	ActionUpdateAppointment  = "UPDATE_APPOINTMENT"
	ActionCancelAppointment  = "CANCEL_APPOINTMENT"
	ActionCreateOnSite       = "CREATE_ONSITE_APPOINTMENT"

	// Visit ledger actions
	ActionCheckIn  = "CHECK_IN"
	ActionCheckOut = "CHECK_OUT"

	ActionUpdateSettings = "UPDATE_SETTINGS"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for anonymous/system actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
