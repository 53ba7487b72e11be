package repository

import (
	"context"

	"visitepulse/internal/model"
	"visitepulse/pkg/pagination"

	"gorm.io/gorm"
)

// AuditRepository records who did what to appointments and visits.
type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, action string, p pagination.Params) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, action string, p pagination.Params) ([]model.AuditLog, int64, error) {
	db := GetDB(ctx, r.db)

	countQuery := db.Model(&model.AuditLog{})
	if action != "" {
		countQuery = countQuery.Where("action = ?", action)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := db.Preload("User")
	if action != "" {
		fetchQuery = fetchQuery.Where("action = ?", action)
	}

	var logs []model.AuditLog
	if err := fetchQuery.Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
