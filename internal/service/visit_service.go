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

// CheckInRequest covers both modalities: an approved appointment presented
// with its access code (typed or scanned), or an explicit walk-in.
type CheckInRequest struct {
	AppointmentID string `json:"appointment_id"`
	AccessCode    string `json:"access_code"`

	// Walk-in fields, used when no appointment is referenced.
	VisitorName string `json:"visitor_name"`
	Department  string `json:"department"`
	Reason      string `json:"reason"`
}

// --- Interface ---

// VisitService is the visit ledger: it opens a Visit on check-in, closes it
// on check-out, and owns the APPROVED -> COMPLETED appointment edge as a
// side effect of checkout.
type VisitService interface {
	CheckIn(ctx context.Context, actor Actor, req CheckInRequest) (*model.Visit, error)
	CheckOut(ctx context.Context, actor Actor, visitID uuid.UUID) (*model.Visit, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	ListActive(ctx context.Context) ([]model.Visit, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Visit, error)
	History(ctx context.Context, p pagination.Params) ([]model.Visit, int64, error)
	IsOnSite(ctx context.Context, visitorName string) (bool, error)
}

type visitService struct {
	visits        repository.VisitRepository
	appointments  repository.AppointmentRepository
	audits        repository.AuditRepository
	notifications repository.NotificationRepository
	tx            repository.TransactionManager
	hub           EventPublisher
	now           func() time.Time
}

// NewVisitService returns a new instance of VisitService
func NewVisitService(
	visits repository.VisitRepository,
	appointments repository.AppointmentRepository,
	audits repository.AuditRepository,
	notifications repository.NotificationRepository,
	tx repository.TransactionManager,
	hub EventPublisher,
) VisitService {
	if hub == nil {
		hub = NoopPublisher
	}
	return &visitService{
		visits:        visits,
		appointments:  appointments,
		audits:        audits,
		notifications: notifications,
		tx:            tx,
		hub:           hub,
		now:           time.Now,
	}
}

// DurationMinutes computes presence time in whole minutes: checkout time if
// closed, now if still open. Clock skew never yields a negative duration.
func DurationMinutes(v *model.Visit, now time.Time) int64 {
	end := now
	if v.CheckOutTime != nil {
		end = *v.CheckOutTime
	}
	minutes := int64(end.Sub(v.CheckInTime).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// --- Implementation ---

func (s *visitService) CheckIn(ctx context.Context, actor Actor, req CheckInRequest) (*model.Visit, error) {
	if actor.Role != rbac.RoleAgent && actor.Role != rbac.RoleAdmin {
		return nil, apperrors.Forbidden("only security agents may record check-ins")
	}

	if req.AppointmentID != "" || req.AccessCode != "" {
		return s.checkInAppointment(ctx, actor, req)
	}
	return s.checkInWalkIn(ctx, actor, req)
}

func (s *visitService) checkInAppointment(ctx context.Context, actor Actor, req CheckInRequest) (*model.Visit, error) {
	now := s.now()

	var visit *model.Visit
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		appt, err := s.resolveAppointment(txCtx, req)
		if err != nil {
			return err
		}

		if appt.Status != model.AppointmentApproved {
			return apperrors.InvalidTransition("appointment is %s, only approved appointments can be checked in", appt.Status)
		}

		ok, matchErr := MatchAccessCode(appt, req.AccessCode)
		if matchErr != nil {
			return matchErr
		}
		if !ok {
			return apperrors.Forbidden("access code does not match")
		}

		open, findErr := s.visits.FindOpenByAppointment(txCtx, appt.ID)
		if findErr != nil {
			return findErr
		}
		if open != nil {
			return apperrors.Conflict("appointment %s already has an open visit", appt.ID)
		}

		visit = &model.Visit{
			AppointmentID: &appt.ID,
			VisitorName:   appt.VisitorName,
			Department:    appt.Department,
			Reason:        appt.Reason,
			CheckInTime:   now,
			AgentID:       &actor.ID,
		}
		if createErr := s.visits.Create(txCtx, visit); createErr != nil {
			return fmt.Errorf("failed to open visit: %w", createErr)
		}

		// Check-in consumes the access code; the appointment itself stays
		// APPROVED until checkout completes it.
		appt.AccessCode = nil
		if saveErr := s.appointments.Update(txCtx, appt); saveErr != nil {
			return fmt.Errorf("failed to consume access code: %w", saveErr)
		}

		if auditErr := s.writeVisitAudit(txCtx, &actor.ID, model.ActionCheckIn, visit); auditErr != nil {
			return auditErr
		}
		return s.notifyVisitor(txCtx, appt, visit, "Your visit has started.")
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(websocket.EventVisitCheckedIn, visit)
	return visit, nil
}

func (s *visitService) checkInWalkIn(ctx context.Context, actor Actor, req CheckInRequest) (*model.Visit, error) {
	name := strings.TrimSpace(req.VisitorName)
	if name == "" {
		return nil, apperrors.Validation("visitor name is required for a walk-in check-in")
	}

	now := s.now()

	var visit *model.Visit
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		open, findErr := s.visits.FindOpenByVisitorName(txCtx, name)
		if findErr != nil {
			return findErr
		}
		if open != nil {
			return apperrors.Conflict("visitor %q is already on site", name)
		}

		visit = &model.Visit{
			VisitorName: name,
			Department:  strings.TrimSpace(req.Department),
			Reason:      strings.TrimSpace(req.Reason),
			CheckInTime: now,
			AgentID:     &actor.ID,
		}
		if createErr := s.visits.Create(txCtx, visit); createErr != nil {
			return fmt.Errorf("failed to open walk-in visit: %w", createErr)
		}

		return s.writeVisitAudit(txCtx, &actor.ID, model.ActionCheckIn, visit)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(websocket.EventVisitCheckedIn, visit)
	return visit, nil
}

func (s *visitService) CheckOut(ctx context.Context, actor Actor, visitID uuid.UUID) (*model.Visit, error) {
	if actor.Role != rbac.RoleAgent && actor.Role != rbac.RoleAdmin {
		return nil, apperrors.Forbidden("only security agents may record check-outs")
	}

	now := s.now()

	var closed *model.Visit
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var closeErr error
		closed, closeErr = s.visits.Close(txCtx, visitID, now)
		if closeErr != nil {
			return closeErr
		}

		// Closing the visit is what completes the bound appointment; there is
		// no other path to COMPLETED.
		if closed.AppointmentID != nil {
			appt, trErr := s.appointments.TransitionStatus(txCtx, *closed.AppointmentID,
				model.AppointmentApproved, model.AppointmentCompleted, nil)
			if trErr != nil {
				return trErr
			}
			if notifyErr := s.notifyVisitor(txCtx, appt, closed, "Your visit has ended. Thank you."); notifyErr != nil {
				return notifyErr
			}
		}

		return s.writeVisitAudit(txCtx, &actor.ID, model.ActionCheckOut, closed)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(websocket.EventVisitCheckedOut, closed)
	return closed, nil
}

func (s *visitService) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *visitService) ListActive(ctx context.Context) ([]model.Visit, error) {
	return s.visits.ListActive(ctx)
}

func (s *visitService) ListByDate(ctx context.Context, date time.Time) ([]model.Visit, error) {
	return s.visits.ListByDate(ctx, date)
}

func (s *visitService) History(ctx context.Context, p pagination.Params) ([]model.Visit, int64, error) {
	return s.visits.List(ctx, p)
}

func (s *visitService) IsOnSite(ctx context.Context, visitorName string) (bool, error) {
	open, err := s.visits.FindOpenByVisitorName(ctx, strings.TrimSpace(visitorName))
	if err != nil {
		return false, err
	}
	return open != nil, nil
}

// --- Helpers ---

func (s *visitService) resolveAppointment(ctx context.Context, req CheckInRequest) (*model.Appointment, error) {
	if req.AppointmentID != "" {
		id, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			return nil, apperrors.Validation("invalid appointment id: %v", err)
		}
		return s.appointments.LockByID(ctx, id)
	}

	// Scan path: only the code was presented. Resolve, then re-read under lock.
	appt, err := s.appointments.GetByCode(ctx, req.AccessCode)
	if err != nil {
		return nil, err
	}
	return s.appointments.LockByID(ctx, appt.ID)
}

func (s *visitService) writeVisitAudit(ctx context.Context, userID *uuid.UUID, action string, visit *model.Visit) error {
	payload := map[string]interface{}{"visitor": visit.VisitorName}
	if visit.AppointmentID != nil {
		payload["appointment_id"] = visit.AppointmentID.String()
	}
	details, _ := json.Marshal(payload)

	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   visit.ID.String(),
		EntityName: visit.VisitorName,
		Details:    string(details),
	}
	if err := s.audits.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *visitService) notifyVisitor(ctx context.Context, appt *model.Appointment, visit *model.Visit, message string) error {
	if appt == nil || appt.VisitorID == nil {
		return nil
	}
	n := &model.Notification{
		UserID:  *appt.VisitorID,
		Message: message,
		Type:    model.NotificationEmail,
		Status:  model.NotificationSent,
		VisitID: &visit.ID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}
