package service

import (
	"context"

	"visitepulse/internal/model"
	"visitepulse/internal/repository"
)

type UpdateSettingsRequest struct {
	OrganizationName      string `json:"organization_name"`
	Timezone              string `json:"timezone"`
	SessionTimeoutEnabled *bool  `json:"session_timeout_enabled"`
	SessionTimeoutMinutes *int   `json:"session_timeout_minutes"`
	WelcomeTitle          string `json:"welcome_title"`
	WelcomeSubtitle       string `json:"welcome_subtitle"`
	WelcomeDescription    string `json:"welcome_description"`
	SupportContact        string `json:"support_contact"`
}

// SettingsService manages the organization-wide settings singleton.
type SettingsService interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
	GetPublic(ctx context.Context) (*model.PublicSettings, error)
	Update(ctx context.Context, actor Actor, req UpdateSettingsRequest) (*model.SystemSettings, error)
}

type settingsService struct {
	repo   repository.SettingsRepository
	audits repository.AuditRepository
}

func NewSettingsService(repo repository.SettingsRepository, audits repository.AuditRepository) SettingsService {
	return &settingsService{repo: repo, audits: audits}
}

// Get returns the settings row, creating the defaults on first access.
func (s *settingsService) Get(ctx context.Context) (*model.SystemSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &model.SystemSettings{
		OrganizationName:      "My Organization",
		Timezone:              "UTC",
		SessionTimeoutEnabled: true,
		SessionTimeoutMinutes: 240,
		WelcomeTitle:          "Visitor management",
		WelcomeSubtitle:       "reinvented",
		WelcomeDescription:    "Streamline your visitor flows and secure your premises from the front door.",
		SupportContact:        "support@visitepulse.local",
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) GetPublic(ctx context.Context) (*model.PublicSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &model.PublicSettings{
		OrganizationName:   settings.OrganizationName,
		WelcomeTitle:       settings.WelcomeTitle,
		WelcomeSubtitle:    settings.WelcomeSubtitle,
		WelcomeDescription: settings.WelcomeDescription,
		SupportContact:     settings.SupportContact,
	}, nil
}

func (s *settingsService) Update(ctx context.Context, actor Actor, req UpdateSettingsRequest) (*model.SystemSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.OrganizationName != "" {
		settings.OrganizationName = req.OrganizationName
	}
	if req.Timezone != "" {
		settings.Timezone = req.Timezone
	}
	if req.SessionTimeoutEnabled != nil {
		settings.SessionTimeoutEnabled = *req.SessionTimeoutEnabled
	}
	if req.SessionTimeoutMinutes != nil {
		settings.SessionTimeoutMinutes = *req.SessionTimeoutMinutes
	}
	if req.WelcomeTitle != "" {
		settings.WelcomeTitle = req.WelcomeTitle
	}
	if req.WelcomeSubtitle != "" {
		settings.WelcomeSubtitle = req.WelcomeSubtitle
	}
	if req.WelcomeDescription != "" {
		settings.WelcomeDescription = req.WelcomeDescription
	}
	if req.SupportContact != "" {
		settings.SupportContact = req.SupportContact
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	_ = s.audits.Log(ctx, &model.AuditLog{
		UserID:   &actor.ID,
		Action:   model.ActionUpdateSettings,
		EntityID: settings.ID.String(),
	})

	return settings, nil
}
