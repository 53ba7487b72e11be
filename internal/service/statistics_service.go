package service

import (
	"context"
	"time"

	"visitepulse/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsService interface {
	VisitsByDepartment(ctx context.Context) ([]model.DepartmentStat, error)
	AverageDuration(ctx context.Context) (*model.DurationStats, error)
	AdminStats(ctx context.Context) (*model.AdminStats, error)
	DetailedVisits(ctx context.Context, from, to time.Time) ([]model.Visit, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// VisitsByDepartment groups all recorded visits by receiving department.
func (s *statisticsService) VisitsByDepartment(ctx context.Context) ([]model.DepartmentStat, error) {
	var stats []model.DepartmentStat
	err := s.db.WithContext(ctx).Model(&model.Visit{}).
		Select("COALESCE(NULLIF(department, ''), 'Unspecified') as department, COUNT(*) as count").
		Group("department").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AverageDuration aggregates presence time across closed visits.
func (s *statisticsService) AverageDuration(ctx context.Context) (*model.DurationStats, error) {
	var row struct {
		AvgSeconds float64
		MinSeconds float64
		MaxSeconds float64
		Total      int64
	}
	err := s.db.WithContext(ctx).Model(&model.Visit{}).
		Select(`AVG(EXTRACT(EPOCH FROM (check_out_time - check_in_time))) as avg_seconds,
			MIN(EXTRACT(EPOCH FROM (check_out_time - check_in_time))) as min_seconds,
			MAX(EXTRACT(EPOCH FROM (check_out_time - check_in_time))) as max_seconds,
			COUNT(*) as total`).
		Where("check_out_time IS NOT NULL").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	if row.Total == 0 {
		return &model.DurationStats{AverageMinutes: decimal.Zero}, nil
	}

	return &model.DurationStats{
		AverageMinutes:        decimal.NewFromFloat(row.AvgSeconds / 60).Round(1),
		MinMinutes:            int64(row.MinSeconds / 60),
		MaxMinutes:            int64(row.MaxSeconds / 60),
		TotalVisitsConsidered: row.Total,
	}, nil
}

// AdminStats collects the admin dashboard counters in one pass per table.
func (s *statisticsService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	db := s.db.WithContext(ctx)
	stats := &model.AdminStats{}

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Appointment{}).Count(&stats.TotalAppointments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Appointment{}).Where("status = ?", model.AppointmentPending).
		Count(&stats.PendingAppointments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Appointment{}).Where("status = ?", model.AppointmentApproved).
		Count(&stats.ApprovedAppointments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Visit{}).Count(&stats.TotalVisits).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Visit{}).Where("check_out_time IS NULL").
		Count(&stats.ActiveVisits).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// DetailedVisits returns visits in a window for reporting, newest first.
func (s *statisticsService) DetailedVisits(ctx context.Context, from, to time.Time) ([]model.Visit, error) {
	query := s.db.WithContext(ctx).Preload("Appointment")
	if !from.IsZero() {
		query = query.Where("check_in_time >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("check_in_time < ?", to)
	}

	var visits []model.Visit
	err := query.Order("check_in_time DESC").Find(&visits).Error
	return visits, err
}
