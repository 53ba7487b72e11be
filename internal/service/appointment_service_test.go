package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"visitepulse/internal/model"
	"visitepulse/internal/rbac"
	"visitepulse/internal/websocket"
	"visitepulse/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appointmentFixture struct {
	svc           *appointmentService
	appointments  *fakeAppointmentRepo
	visits        *fakeVisitRepo
	users         *fakeUserRepo
	audits        *fakeAuditRepo
	notifications *fakeNotificationRepo
	hub           *capturePublisher
	clock         time.Time
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	f := &appointmentFixture{
		appointments:  newFakeAppointmentRepo(),
		visits:        newFakeVisitRepo(),
		users:         newFakeUserRepo(),
		audits:        &fakeAuditRepo{},
		notifications: &fakeNotificationRepo{},
		hub:           &capturePublisher{},
		clock:         time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = &appointmentService{
		appointments:  f.appointments,
		visits:        f.visits,
		users:         f.users,
		audits:        f.audits,
		notifications: f.notifications,
		tx:            fakeTxManager{},
		hub:           f.hub,
		now:           func() time.Time { return f.clock },
	}
	return f
}

func (f *appointmentFixture) addVisitor(t *testing.T) Actor {
	t.Helper()
	user := &model.User{
		FirstName: "Alice",
		LastName:  "Martin",
		Email:     "alice@example.com",
		Role:      rbac.RoleVisitor,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return Actor{ID: user.ID, Email: user.Email, Role: user.Role}
}

func secretaryActor() Actor {
	return Actor{ID: uuid.New(), Email: "sec@example.com", Role: rbac.RoleSecretary}
}

func agentActor() Actor {
	return Actor{ID: uuid.New(), Email: "agent@example.com", Role: rbac.RoleAgent}
}

func adminActor() Actor {
	return Actor{ID: uuid.New(), Email: "admin@example.com", Role: rbac.RoleAdmin}
}

func validSubmitRequest() SubmitAppointmentRequest {
	return SubmitAppointmentRequest{
		Date:       "2025-06-20",
		Time:       "14:30",
		Department: "Finance",
		Host:       "host@example.com",
		Reason:     "Quarterly review",
	}
}

func TestSubmitCreatesPendingWithoutAccessCode(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)

	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentPending, appt.Status)
	assert.Nil(t, appt.AccessCode)
	assert.Equal(t, "Alice Martin", appt.VisitorName)
	assert.Equal(t, model.AppointmentScheduled, appt.Type)
	assert.Equal(t, []string{websocket.EventAppointmentSubmitted}, f.hub.types())
}

func TestSubmitRejectsNonVisitor(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.Submit(context.Background(), secretaryActor(), validSubmitRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestSubmitValidatesFields(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)

	cases := map[string]func(*SubmitAppointmentRequest){
		"bad date":      func(r *SubmitAppointmentRequest) { r.Date = "20-06-2025" },
		"empty reason":  func(r *SubmitAppointmentRequest) { r.Reason = "   " },
		"empty host":    func(r *SubmitAppointmentRequest) { r.Host = "" },
		"empty dept":    func(r *SubmitAppointmentRequest) { r.Department = "" },
		"empty time":    func(r *SubmitAppointmentRequest) { r.Time = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validSubmitRequest()
			mutate(&req)
			_, err := f.svc.Submit(context.Background(), visitor, req)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "expected validation error")
		})
	}
}

func TestApproveIssuesAccessCode(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	approved, err := f.svc.Approve(context.Background(), appt.ID, secretaryActor())
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentApproved, approved.Status)
	require.NotNil(t, approved.AccessCode)
	assert.Len(t, *approved.AccessCode, 8)
	assert.NotNil(t, approved.ReviewedAt)

	// Visitor got notified with the code.
	notifs, _ := f.notifications.ListByUser(context.Background(), visitor.ID, false)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, *approved.AccessCode)
}

func TestApproveRequiresReviewerRole(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	for _, actor := range []Actor{visitor, agentActor(), {ID: uuid.New(), Role: rbac.RoleEmployee}} {
		_, err := f.svc.Approve(context.Background(), appt.ID, actor)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "role %s", actor.Role)
	}
}

func TestSecondApproveDoesNotReissueCode(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	first, err := f.svc.Approve(context.Background(), appt.ID, secretaryActor())
	require.NoError(t, err)
	firstCode := *first.AccessCode

	_, err = f.svc.Approve(context.Background(), appt.ID, secretaryActor())
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	// The stored code is still the first one.
	current, err := f.appointments.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	require.NotNil(t, current.AccessCode)
	assert.Equal(t, firstCode, *current.AccessCode)
}

func TestRejectAfterApproveLosesTheRace(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), appt.ID, secretaryActor())
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), appt.ID, secretaryActor(), "double booked")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	current, err := f.appointments.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentApproved, current.Status)
	assert.Empty(t, current.RejectionReason)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), appt.ID, secretaryActor(), "   ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	rejected, err := f.svc.Reject(context.Background(), appt.ID, secretaryActor(), "no availability")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentRejected, rejected.Status)
	assert.Equal(t, "no availability", rejected.RejectionReason)
	assert.Nil(t, rejected.AccessCode)
}

func TestApproveMissingAppointmentIsNotFound(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.Approve(context.Background(), uuid.New(), secretaryActor())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateAndCancelArePendingOnlyAndOwnerOnly(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	stranger := Actor{ID: uuid.New(), Role: rbac.RoleVisitor}
	_, err = f.svc.Update(context.Background(), appt.ID, stranger, UpdateAppointmentRequest{Reason: "hijack"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	err = f.svc.Cancel(context.Background(), appt.ID, stranger)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	updated, err := f.svc.Update(context.Background(), appt.ID, visitor, UpdateAppointmentRequest{Reason: "Updated reason"})
	require.NoError(t, err)
	assert.Equal(t, "Updated reason", updated.Reason)

	_, err = f.svc.Approve(context.Background(), appt.ID, secretaryActor())
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), appt.ID, visitor, UpdateAppointmentRequest{Reason: "too late"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	err = f.svc.Cancel(context.Background(), appt.ID, visitor)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestCancelDeletesPendingAppointment(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	appt, err := f.svc.Submit(context.Background(), visitor, validSubmitRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), appt.ID, visitor))

	_, err = f.svc.Get(context.Background(), appt.ID, visitor)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateOnSiteApprovesAndOpensVisit(t *testing.T) {
	f := newAppointmentFixture(t)
	agent := agentActor()

	appt, visit, err := f.svc.CreateOnSite(context.Background(), agent, OnSiteAppointmentRequest{
		VisitorName: "Bob Walker",
		Department:  "IT",
		Host:        "host@example.com",
		Reason:      "Server delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentApproved, appt.Status)
	assert.Equal(t, model.AppointmentOnSite, appt.Type)
	assert.Nil(t, appt.AccessCode)
	require.NotNil(t, visit)
	assert.Equal(t, appt.ID, *visit.AppointmentID)
	assert.True(t, visit.IsOpen())
}

func TestCreateOnSiteRejectsDuplicatePresence(t *testing.T) {
	f := newAppointmentFixture(t)
	agent := agentActor()
	req := OnSiteAppointmentRequest{
		VisitorName: "Bob Walker",
		Department:  "IT",
		Host:        "host@example.com",
		Reason:      "Server delivery",
	}

	_, _, err := f.svc.CreateOnSite(context.Background(), agent, req)
	require.NoError(t, err)

	_, _, err = f.svc.CreateOnSite(context.Background(), agent, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCreateOnSiteRequiresDeskRole(t *testing.T) {
	f := newAppointmentFixture(t)
	visitor := f.addVisitor(t)
	req := func(name string) OnSiteAppointmentRequest {
		return OnSiteAppointmentRequest{
			VisitorName: name,
			Department:  "IT",
			Host:        "host@example.com",
			Reason:      "Server delivery",
		}
	}

	// All desk roles may register on-site visitors.
	for i, actor := range []Actor{agentActor(), secretaryActor(), adminActor()} {
		_, _, err := f.svc.CreateOnSite(context.Background(), actor, req(fmt.Sprintf("Guest %d", i)))
		assert.NoError(t, err, "role %s", actor.Role)
	}

	_, _, err := f.svc.CreateOnSite(context.Background(), visitor, req("Bob Walker"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	employee := Actor{ID: uuid.New(), Email: "emp@example.com", Role: rbac.RoleEmployee}
	_, _, err = f.svc.CreateOnSite(context.Background(), employee, req("Bob Walker"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestCreateOnSiteDuplicateRejectedAtInsert(t *testing.T) {
	f := newAppointmentFixture(t)
	agent := agentActor()
	req := OnSiteAppointmentRequest{
		VisitorName: "Bob Walker",
		Department:  "IT",
		Host:        "host@example.com",
		Reason:      "Server delivery",
	}

	_, _, err := f.svc.CreateOnSite(context.Background(), agent, req)
	require.NoError(t, err)

	// Even when a concurrent transaction's lookup misses the open visit, the
	// unique index on open visits rejects the second insert.
	f.visits.staleOpenReads = true
	_, _, err = f.svc.CreateOnSite(context.Background(), agent, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestListForHostWindows(t *testing.T) {
	f := newAppointmentFixture(t)
	host := Actor{ID: uuid.New(), Email: "host@example.com", Role: rbac.RoleEmployee}

	mk := func(day time.Time) {
		visitorID := uuid.New()
		appt := &model.Appointment{
			VisitorID:   &visitorID,
			VisitorName: "V",
			Date:        day,
			Time:        "10:00",
			Department:  "Finance",
			Host:        host.Email,
			Reason:      "r",
			Status:      model.AppointmentApproved,
		}
		require.NoError(t, f.appointments.Create(context.Background(), appt))
	}

	today := f.clock
	mk(today)
	mk(today.AddDate(0, 0, 3))
	mk(today.AddDate(0, 0, -2))

	for window, want := range map[string]int{"today": 1, "upcoming": 1, "history": 1, "": 3} {
		got, err := f.svc.ListForHost(context.Background(), host, window)
		require.NoError(t, err)
		assert.Len(t, got, want, "window %q", window)
	}
}
