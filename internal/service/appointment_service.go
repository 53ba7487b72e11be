package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"visitepulse/internal/model"
	"visitepulse/internal/rbac"
	"visitepulse/internal/repository"
	"visitepulse/internal/websocket"
	"visitepulse/pkg/apperrors"
	"visitepulse/pkg/pagination"

	"github.com/google/uuid"
)

// --- DTOs ---

type SubmitAppointmentRequest struct {
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string `json:"time" binding:"required"` // HH:MM
	Department string `json:"department" binding:"required"`
	Host       string `json:"host" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	Phone      string `json:"phone"`
}

type OnSiteAppointmentRequest struct {
	VisitorName string `json:"visitor_name" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Department  string `json:"department" binding:"required"`
	Host        string `json:"host" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

type UpdateAppointmentRequest struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	Department string `json:"department"`
	Host       string `json:"host"`
	Reason     string `json:"reason"`
}

type RejectAppointmentRequest struct {
	Reason string `json:"reason"`
}

// --- Interface ---

// AppointmentService is the appointment lifecycle engine. Status only moves
// along PENDING -> APPROVED -> COMPLETED and PENDING -> REJECTED; the
// APPROVED -> COMPLETED edge is owned by the visit ledger (checkout) and has
// no direct entry point here.
type AppointmentService interface {
	Submit(ctx context.Context, actor Actor, req SubmitAppointmentRequest) (*model.Appointment, error)
	CreateOnSite(ctx context.Context, actor Actor, req OnSiteAppointmentRequest) (*model.Appointment, *model.Visit, error)
	Approve(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error)
	Reject(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*model.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, actor Actor, req UpdateAppointmentRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, actor Actor) error
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error)
	GetByCode(ctx context.Context, code string) (*model.Appointment, error)
	ListByStatus(ctx context.Context, status string, p pagination.Params) ([]model.Appointment, int64, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Appointment, error)
	ListTodayApproved(ctx context.Context) ([]model.Appointment, error)
	ListForHost(ctx context.Context, actor Actor, window string) ([]model.Appointment, error)
	HostStats(ctx context.Context, actor Actor) (*model.EmployeeStats, error)
}

type appointmentService struct {
	appointments  repository.AppointmentRepository
	visits        repository.VisitRepository
	users         repository.UserRepository
	audits        repository.AuditRepository
	notifications repository.NotificationRepository
	tx            repository.TransactionManager
	hub           EventPublisher
	now           func() time.Time
}

// NewAppointmentService returns a new instance of AppointmentService
func NewAppointmentService(
	appointments repository.AppointmentRepository,
	visits repository.VisitRepository,
	users repository.UserRepository,
	audits repository.AuditRepository,
	notifications repository.NotificationRepository,
	tx repository.TransactionManager,
	hub EventPublisher,
) AppointmentService {
	if hub == nil {
		hub = NoopPublisher
	}
	return &appointmentService{
		appointments:  appointments,
		visits:        visits,
		users:         users,
		audits:        audits,
		notifications: notifications,
		tx:            tx,
		hub:           hub,
		now:           time.Now,
	}
}

// --- Implementation ---

func (s *appointmentService) Submit(ctx context.Context, actor Actor, req SubmitAppointmentRequest) (*model.Appointment, error) {
	if actor.Role != rbac.RoleVisitor {
		return nil, apperrors.Forbidden("only visitors may request a scheduled appointment")
	}

	date, err := parseAppointmentDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := validateAppointmentFields(req.Time, req.Host, req.Department, req.Reason); err != nil {
		return nil, err
	}

	visitor, err := s.users.GetByID(ctx, actor.ID.String())
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		VisitorID:   &actor.ID,
		VisitorName: visitor.FullName(),
		Email:       visitor.Email,
		Phone:       strings.TrimSpace(req.Phone),
		Date:        date,
		Time:        req.Time,
		Department:  strings.TrimSpace(req.Department),
		Host:        strings.TrimSpace(req.Host),
		Reason:      strings.TrimSpace(req.Reason),
		Type:        model.AppointmentScheduled,
		Status:      model.AppointmentPending,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.appointments.Create(txCtx, appt); createErr != nil {
			return fmt.Errorf("failed to create appointment: %w", createErr)
		}
		return s.writeAudit(txCtx, &actor.ID, model.ActionSubmitAppointment, appt, map[string]interface{}{
			"date": req.Date, "time": req.Time, "host": appt.Host,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(websocket.EventAppointmentSubmitted, appt)
	return appt, nil
}

func (s *appointmentService) CreateOnSite(ctx context.Context, actor Actor, req OnSiteAppointmentRequest) (*model.Appointment, *model.Visit, error) {
	if !actor.IsDeskStaff() {
		return nil, nil, apperrors.Forbidden("role %s may not register on-site appointments", actor.Role)
	}

	name := strings.TrimSpace(req.VisitorName)
	if name == "" {
		return nil, nil, apperrors.Validation("visitor name is required")
	}
	if err := validateAppointmentFields("-", req.Host, req.Department, req.Reason); err != nil {
		return nil, nil, err
	}

	now := s.now()
	reviewedAt := now

	// On-site appointments skip review and carry no access code: the visitor
	// is standing at the desk and check-in happens in the same breath.
	appt := &model.Appointment{
		VisitorName: name,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Date:        now,
		Time:        now.Format("15:04"),
		Department:  strings.TrimSpace(req.Department),
		Host:        strings.TrimSpace(req.Host),
		Reason:      strings.TrimSpace(req.Reason),
		Type:        model.AppointmentOnSite,
		Status:      model.AppointmentApproved,
		ReviewedBy:  &actor.ID,
		ReviewedAt:  &reviewedAt,
	}

	var visit *model.Visit
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		open, findErr := s.visits.FindOpenByVisitorName(txCtx, name)
		if findErr != nil {
			return findErr
		}
		if open != nil {
			return apperrors.Conflict("visitor %q is already on site", name)
		}

		if createErr := s.appointments.Create(txCtx, appt); createErr != nil {
			return fmt.Errorf("failed to create on-site appointment: %w", createErr)
		}

		visit = &model.Visit{
			AppointmentID: &appt.ID,
			VisitorName:   name,
			Department:    appt.Department,
			Reason:        appt.Reason,
			CheckInTime:   now,
			AgentID:       &actor.ID,
		}
		if createErr := s.visits.Create(txCtx, visit); createErr != nil {
			return fmt.Errorf("failed to open visit: %w", createErr)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionCreateOnSite, appt, map[string]interface{}{
			"visitor": name, "visit_id": visit.ID.String(),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.hub.Publish(websocket.EventVisitCheckedIn, visit)
	return appt, visit, nil
}

func (s *appointmentService) Approve(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	if !actor.CanReview() {
		return nil, apperrors.Forbidden("role %s may not approve appointments", actor.Role)
	}

	code := GenerateAccessCode()
	now := s.now()

	var approved *model.Appointment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var trErr error
		approved, trErr = s.appointments.TransitionStatus(txCtx, id,
			model.AppointmentPending, model.AppointmentApproved,
			map[string]interface{}{
				"access_code": code,
				"reviewed_by": actor.ID,
				"reviewed_at": now,
			})
		if trErr != nil {
			return trErr
		}

		if auditErr := s.writeAudit(txCtx, &actor.ID, model.ActionApproveAppointment, approved, nil); auditErr != nil {
			return auditErr
		}
		return s.notifyVisitor(txCtx, approved,
			fmt.Sprintf("Your appointment on %s has been approved. Access code: %s",
				approved.Date.Format("2006-01-02"), code))
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(websocket.EventAppointmentApproved, approved)
	return approved, nil
}

func (s *appointmentService) Reject(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*model.Appointment, error) {
	if !actor.CanReview() {
		return nil, apperrors.Forbidden("role %s may not reject appointments", actor.Role)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}

	now := s.now()

	var rejected *model.Appointment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var trErr error
		rejected, trErr = s.appointments.TransitionStatus(txCtx, id,
			model.AppointmentPending, model.AppointmentRejected,
			map[string]interface{}{
				"rejection_reason": reason,
				"reviewed_by":      actor.ID,
				"reviewed_at":      now,
			})
		if trErr != nil {
			return trErr
		}

		if auditErr := s.writeAudit(txCtx, &actor.ID, model.ActionRejectAppointment, rejected, map[string]interface{}{
			"reason": reason,
		}); auditErr != nil {
			return auditErr
		}
		return s.notifyVisitor(txCtx, rejected,
			"Your appointment request has been rejected: "+reason)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(websocket.EventAppointmentRejected, rejected)
	return rejected, nil
}

func (s *appointmentService) Update(ctx context.Context, id uuid.UUID, actor Actor, req UpdateAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.OwnedBy(actor.ID) {
		return nil, apperrors.Forbidden("you may only modify your own appointments")
	}
	if appt.Status != model.AppointmentPending {
		return nil, apperrors.InvalidTransition("only pending appointments can be modified")
	}

	if req.Date != "" {
		date, parseErr := parseAppointmentDate(req.Date)
		if parseErr != nil {
			return nil, parseErr
		}
		appt.Date = date
	}
	if req.Time != "" {
		appt.Time = req.Time
	}
	if req.Department != "" {
		appt.Department = strings.TrimSpace(req.Department)
	}
	if req.Host != "" {
		appt.Host = strings.TrimSpace(req.Host)
	}
	if req.Reason != "" {
		appt.Reason = strings.TrimSpace(req.Reason)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.appointments.Update(txCtx, appt); saveErr != nil {
			return fmt.Errorf("failed to update appointment: %w", saveErr)
		}
		return s.writeAudit(txCtx, &actor.ID, model.ActionUpdateAppointment, appt, nil)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id uuid.UUID, actor Actor) error {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !appt.OwnedBy(actor.ID) {
		return apperrors.Forbidden("you may only cancel your own appointments")
	}
	if appt.Status != model.AppointmentPending {
		return apperrors.InvalidTransition("only pending appointments can be cancelled")
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.appointments.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("failed to cancel appointment: %w", delErr)
		}
		return s.writeAudit(txCtx, &actor.ID, model.ActionCancelAppointment, appt, nil)
	})
}

func (s *appointmentService) Get(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleVisitor && !appt.OwnedBy(actor.ID) {
		return nil, apperrors.Forbidden("access denied")
	}
	return appt, nil
}

func (s *appointmentService) GetByCode(ctx context.Context, code string) (*model.Appointment, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.Validation("access code is required")
	}
	return s.appointments.GetByCode(ctx, code)
}

func (s *appointmentService) ListByStatus(ctx context.Context, status string, p pagination.Params) ([]model.Appointment, int64, error) {
	return s.appointments.ListByStatus(ctx, status, p)
}

func (s *appointmentService) ListMine(ctx context.Context, actor Actor) ([]model.Appointment, error) {
	return s.appointments.ListByVisitor(ctx, actor.ID)
}

func (s *appointmentService) ListTodayApproved(ctx context.Context) ([]model.Appointment, error) {
	return s.appointments.ListApprovedForDate(ctx, s.now())
}

// ListForHost returns the approved appointments addressed to the calling
// employee. window is "today", "upcoming" or "history".
func (s *appointmentService) ListForHost(ctx context.Context, actor Actor, window string) ([]model.Appointment, error) {
	appts, err := s.appointments.ListForHost(ctx, actor.Email, model.AppointmentApproved)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	filtered := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		day := dateOnly(a.Date)
		switch window {
		case "today":
			if day.Equal(today) {
				filtered = append(filtered, a)
			}
		case "upcoming":
			if day.After(today) {
				filtered = append(filtered, a)
			}
		case "history":
			if day.Before(today) {
				filtered = append(filtered, a)
			}
		default:
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func (s *appointmentService) HostStats(ctx context.Context, actor Actor) (*model.EmployeeStats, error) {
	appts, err := s.appointments.ListForHost(ctx, actor.Email, "")
	if err != nil {
		return nil, err
	}

	stats := &model.EmployeeStats{Total: int64(len(appts))}
	for _, a := range appts {
		switch a.Status {
		case model.AppointmentPending:
			stats.Pending++
		case model.AppointmentApproved:
			stats.Approved++
		}
	}
	return stats, nil
}

// --- Helpers ---

func (s *appointmentService) writeAudit(ctx context.Context, userID *uuid.UUID, action string, appt *model.Appointment, extra map[string]interface{}) error {
	payload := map[string]interface{}{"status": appt.Status}
	for k, v := range extra {
		payload[k] = v
	}
	details, _ := json.Marshal(payload)

	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   appt.ID.String(),
		EntityName: appt.VisitorName,
		Details:    string(details),
	}
	if err := s.audits.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *appointmentService) notifyVisitor(ctx context.Context, appt *model.Appointment, message string) error {
	if appt.VisitorID == nil {
		return nil
	}
	n := &model.Notification{
		UserID:  *appt.VisitorID,
		Message: message,
		Type:    model.NotificationEmail,
		Status:  model.NotificationSent,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

func parseAppointmentDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

func validateAppointmentFields(timeOfDay, host, department, reason string) error {
	if strings.TrimSpace(timeOfDay) == "" {
		return apperrors.Validation("time is required")
	}
	if strings.TrimSpace(host) == "" {
		return apperrors.Validation("host is required")
	}
	if strings.TrimSpace(department) == "" {
		return apperrors.Validation("department is required")
	}
	if strings.TrimSpace(reason) == "" {
		return apperrors.Validation("reason is required")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
