package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"visitepulse/internal/model"
	"visitepulse/pkg/apperrors"
	"visitepulse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentRepository defines the interface for data access of Appointment entities
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	GetByCode(ctx context.Context, code string) (*model.Appointment, error)
	// LockByID loads the appointment with a FOR UPDATE row lock; callers must
	// be inside a transaction.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// TransitionStatus applies status and extra updates only while the stored
	// status still equals from. A stale precondition is rejected by the store,
	// never overwritten: the first writer wins.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (*model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStatus(ctx context.Context, status string, p pagination.Params) ([]model.Appointment, int64, error)
	ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]model.Appointment, error)
	ListForHost(ctx context.Context, host, status string) ([]model.Appointment, error)
	ListApprovedForDate(ctx context.Context, date time.Time) ([]model.Appointment, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository returns a new instance of AppointmentRepository
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return GetDB(ctx, r.db).Create(appt).Error
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	err := GetDB(ctx, r.db).Preload("Visitor").Preload("Reviewer").First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("appointment %s not found", id)
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) GetByCode(ctx context.Context, code string) (*model.Appointment, error) {
	var appt model.Appointment
	err := GetDB(ctx, r.db).First(&appt, "access_code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no appointment matches this access code")
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("appointment %s not found", id)
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (*model.Appointment, error) {
	db := GetDB(ctx, r.db)

	fields := map[string]interface{}{"status": to}
	for k, v := range updates {
		fields[k] = v
	}

	res := db.Model(&model.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the appointment vanished or another actor got there first.
		var current model.Appointment
		if err := db.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("appointment %s not found", id)
			}
			return nil, err
		}
		return nil, apperrors.InvalidTransition("appointment is %s, cannot move %s -> %s", current.Status, from, to)
	}

	var updated model.Appointment
	if err := db.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	return GetDB(ctx, r.db).Save(appt).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Appointment{}).Error
}

func (r *appointmentRepository) ListByStatus(ctx context.Context, status string, p pagination.Params) ([]model.Appointment, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	countQuery := db.Model(&model.Appointment{})
	if status != "" {
		countQuery = countQuery.Where("status = ?", status)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appts []model.Appointment
	fetchQuery := db.Preload("Visitor")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	err := fetchQuery.
		Order("date ASC, time ASC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&appts).Error
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *appointmentRepository) ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := GetDB(ctx, r.db).
		Where("visitor_id = ?", visitorID).
		Order("date DESC, time DESC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListForHost(ctx context.Context, host, status string) ([]model.Appointment, error) {
	db := GetDB(ctx, r.db).Where("host = ?", host)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var appts []model.Appointment
	err := db.Order("date ASC, time ASC").Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListApprovedForDate(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := GetDB(ctx, r.db).
		Where("status = ? AND date = ?", model.AppointmentApproved, date.Format("2006-01-02")).
		Order("time ASC").
		Find(&appts).Error
	return appts, err
}
