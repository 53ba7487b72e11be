package repository

import (
	"context"
	"errors"

	"visitepulse/internal/model"

	"gorm.io/gorm"
)

// SettingsRepository manages the single SystemSettings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
	Save(ctx context.Context, settings *model.SystemSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository returns a new instance of SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the settings row, or nil when none has been created yet.
func (r *settingsRepository) Get(ctx context.Context) (*model.SystemSettings, error) {
	var settings model.SystemSettings
	err := GetDB(ctx, r.db).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *model.SystemSettings) error {
	return GetDB(ctx, r.db).Save(settings).Error
}
