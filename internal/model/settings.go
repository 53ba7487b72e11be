package model

import (
	"time"

	"github.com/google/uuid"
)

// SystemSettings is a single-row table of organization-level configuration.
type SystemSettings struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationName      string    `gorm:"type:varchar(255);not null" json:"organization_name"`
	Timezone              string    `gorm:"type:varchar(50)" json:"timezone"`
	SessionTimeoutEnabled bool      `gorm:"default:true" json:"session_timeout_enabled"`
	SessionTimeoutMinutes int       `gorm:"default:240" json:"session_timeout_minutes"`
	WelcomeTitle          string    `gorm:"type:varchar(255)" json:"welcome_title"`
	WelcomeSubtitle       string    `gorm:"type:varchar(255)" json:"welcome_subtitle"`
	WelcomeDescription    string    `gorm:"type:text" json:"welcome_description"`
	SupportContact        string    `gorm:"type:varchar(255)" json:"support_contact"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// PublicSettings is the unauthenticated subset served to the landing page.
type PublicSettings struct {
	OrganizationName   string `json:"organization_name"`
	WelcomeTitle       string `json:"welcome_title"`
	WelcomeSubtitle    string `json:"welcome_subtitle"`
	WelcomeDescription string `json:"welcome_description"`
	SupportContact     string `json:"support_contact"`
}
