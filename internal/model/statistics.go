package model

import (
	"github.com/shopspring/decimal"
)

// DepartmentStat counts visits received by one department.
type DepartmentStat struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// DurationStats aggregates closed-visit presence durations in minutes.
type DurationStats struct {
	AverageMinutes        decimal.Decimal `json:"average_minutes"`
	MinMinutes            int64           `json:"min_minutes"`
	MaxMinutes            int64           `json:"max_minutes"`
	TotalVisitsConsidered int64           `json:"total_visits_considered"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalAppointments    int64 `json:"total_appointments"`
	PendingAppointments  int64 `json:"pending_appointments"`
	ApprovedAppointments int64 `json:"approved_appointments"`
	TotalVisits          int64 `json:"total_visits"`
	ActiveVisits         int64 `json:"active_visits"`
}

// EmployeeStats summarizes appointments addressed to one host.
type EmployeeStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}
