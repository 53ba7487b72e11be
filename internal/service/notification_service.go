package service

import (
	"context"

	"visitepulse/internal/model"
	"visitepulse/internal/repository"

	"github.com/google/uuid"
)

// NotificationService serves the in-app notification feed. Rows are written
// by the lifecycle services inside their transactions; this only reads them.
type NotificationService interface {
	ListMine(ctx context.Context, actor Actor, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListMine(ctx context.Context, actor Actor, unreadOnly bool) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, actor.ID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, actor.ID)
}

func (s *notificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}
