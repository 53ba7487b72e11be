package service

import (
	"context"

	"visitepulse/internal/model"
	"visitepulse/internal/repository"
	"visitepulse/pkg/pagination"
)

// AuditService exposes the action trail to the admin console. Entries are
// written by the lifecycle services; this only reads them back.
type AuditService interface {
	List(ctx context.Context, action string, p pagination.Params) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, action string, p pagination.Params) ([]model.AuditLog, int64, error) {
	return s.repo.List(ctx, action, p)
}
