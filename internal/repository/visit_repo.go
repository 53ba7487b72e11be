package repository

import (
	"context"
	"errors"
	"time"

	"visitepulse/internal/model"
	"visitepulse/pkg/apperrors"
	"visitepulse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitRepository defines the interface for data access of Visit entities
type VisitRepository interface {
	// Create inserts the visit. The open-visit unique index rejects a second
	// open visit for the same visitor name; that surfaces as a Conflict.
	Create(ctx context.Context, visit *model.Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	// FindOpenByAppointment returns the open visit for an appointment, or
	// nil when none exists.
	FindOpenByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Visit, error)
	// FindOpenByVisitorName returns the open visit referencing that visitor,
	// or nil when none exists.
	FindOpenByVisitorName(ctx context.Context, visitorName string) (*model.Visit, error)
	// Close sets the check-out time only while the visit is still open. A
	// visit already closed by a concurrent actor is rejected, not rewritten.
	Close(ctx context.Context, id uuid.UUID, checkOut time.Time) (*model.Visit, error)
	ListActive(ctx context.Context) ([]model.Visit, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Visit, error)
	List(ctx context.Context, p pagination.Params) ([]model.Visit, int64, error)
}

type visitRepository struct {
	db *gorm.DB
}

// NewVisitRepository returns a new instance of VisitRepository
func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	err := GetDB(ctx, r.db).Create(visit).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("visitor %q is already on site", visit.VisitorName)
	}
	return err
}

func (r *visitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	err := GetDB(ctx, r.db).Preload("Appointment").Preload("Agent").First(&visit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("visit %s not found", id)
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) FindOpenByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	err := GetDB(ctx, r.db).
		Where("appointment_id = ? AND check_out_time IS NULL", appointmentID).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) FindOpenByVisitorName(ctx context.Context, visitorName string) (*model.Visit, error) {
	var visit model.Visit
	err := GetDB(ctx, r.db).
		Where("visitor_name = ? AND check_out_time IS NULL", visitorName).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) Close(ctx context.Context, id uuid.UUID, checkOut time.Time) (*model.Visit, error) {
	db := GetDB(ctx, r.db)

	res := db.Model(&model.Visit{}).
		Where("id = ? AND check_out_time IS NULL", id).
		Update("check_out_time", checkOut)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var current model.Visit
		if err := db.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("visit %s not found", id)
			}
			return nil, err
		}
		return nil, apperrors.InvalidTransition("visit %s is already checked out", id)
	}

	var closed model.Visit
	if err := db.First(&closed, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &closed, nil
}

func (r *visitRepository) ListActive(ctx context.Context) ([]model.Visit, error) {
	var visits []model.Visit
	err := GetDB(ctx, r.db).
		Preload("Appointment").
		Where("check_out_time IS NULL").
		Order("check_in_time ASC").
		Find(&visits).Error
	return visits, err
}

func (r *visitRepository) ListByDate(ctx context.Context, date time.Time) ([]model.Visit, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var visits []model.Visit
	err := GetDB(ctx, r.db).
		Preload("Appointment").
		Where("check_in_time >= ? AND check_in_time < ?", dayStart, dayEnd).
		Order("check_in_time ASC").
		Find(&visits).Error
	return visits, err
}

func (r *visitRepository) List(ctx context.Context, p pagination.Params) ([]model.Visit, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Visit{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var visits []model.Visit
	err := db.Preload("Appointment").Preload("Agent").
		Order("check_in_time DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&visits).Error
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}
