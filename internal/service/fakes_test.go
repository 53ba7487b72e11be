package service

import (
	"context"
	"sync"
	"time"

	"visitepulse/internal/model"
	"visitepulse/pkg/apperrors"
	"visitepulse/pkg/pagination"

	"github.com/google/uuid"
)

// In-memory repository fakes. They reproduce the store-side guarantees the
// services rely on, in particular the conditional writes behind
// TransitionStatus and Close.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type capturedEvent struct {
	Type    string
	Payload interface{}
}

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Type: eventType, Payload: payload})
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// --- appointments ---

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) clone(a *model.Appointment) *model.Appointment {
	cp := *a
	return &cp
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	r.items[appt.ID] = r.clone(appt)
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("appointment %s not found", id)
	}
	return r.clone(appt), nil
}

func (r *fakeAppointmentRepo) GetByCode(_ context.Context, code string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.items {
		if appt.AccessCode != nil && *appt.AccessCode == code {
			return r.clone(appt), nil
		}
	}
	return nil, apperrors.NotFound("no appointment matches this access code")
}

func (r *fakeAppointmentRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAppointmentRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("appointment %s not found", id)
	}
	if appt.Status != from {
		return nil, apperrors.InvalidTransition("appointment is %s, cannot move %s -> %s", appt.Status, from, to)
	}

	appt.Status = to
	for k, v := range updates {
		switch k {
		case "access_code":
			code := v.(string)
			appt.AccessCode = &code
		case "rejection_reason":
			appt.RejectionReason = v.(string)
		case "reviewed_by":
			rid := v.(uuid.UUID)
			appt.ReviewedBy = &rid
		case "reviewed_at":
			at := v.(time.Time)
			appt.ReviewedAt = &at
		}
	}
	return r.clone(appt), nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[appt.ID]; !ok {
		return apperrors.NotFound("appointment %s not found", appt.ID)
	}
	r.items[appt.ID] = r.clone(appt)
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeAppointmentRepo) ListByStatus(_ context.Context, status string, _ pagination.Params) ([]model.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Appointment
	for _, appt := range r.items {
		if status == "" || appt.Status == status {
			out = append(out, *r.clone(appt))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppointmentRepo) ListByVisitor(_ context.Context, visitorID uuid.UUID) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Appointment
	for _, appt := range r.items {
		if appt.VisitorID != nil && *appt.VisitorID == visitorID {
			out = append(out, *r.clone(appt))
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListForHost(_ context.Context, host, status string) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Appointment
	for _, appt := range r.items {
		if appt.Host != host {
			continue
		}
		if status != "" && appt.Status != status {
			continue
		}
		out = append(out, *r.clone(appt))
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListApprovedForDate(_ context.Context, date time.Time) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := date.Format("2006-01-02")
	var out []model.Appointment
	for _, appt := range r.items {
		if appt.Status == model.AppointmentApproved && appt.Date.Format("2006-01-02") == day {
			out = append(out, *r.clone(appt))
		}
	}
	return out, nil
}

// --- visits ---

type fakeVisitRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Visit

	// staleOpenReads makes FindOpenByVisitorName miss open visits, the way a
	// concurrent transaction's snapshot would under read committed. The
	// unique-index check in Create still applies.
	staleOpenReads bool
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{items: make(map[uuid.UUID]*model.Visit)}
}

func (r *fakeVisitRepo) clone(v *model.Visit) *model.Visit {
	cp := *v
	return &cp
}

func (r *fakeVisitRepo) Create(_ context.Context, visit *model.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.VisitorName == visit.VisitorName && existing.CheckOutTime == nil {
			return apperrors.Conflict("visitor %q is already on site", visit.VisitorName)
		}
	}
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	r.items[visit.ID] = r.clone(visit)
	return nil
}

func (r *fakeVisitRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	visit, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("visit %s not found", id)
	}
	return r.clone(visit), nil
}

func (r *fakeVisitRepo) FindOpenByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, visit := range r.items {
		if visit.AppointmentID != nil && *visit.AppointmentID == appointmentID && visit.CheckOutTime == nil {
			return r.clone(visit), nil
		}
	}
	return nil, nil
}

func (r *fakeVisitRepo) FindOpenByVisitorName(_ context.Context, visitorName string) (*model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleOpenReads {
		return nil, nil
	}
	for _, visit := range r.items {
		if visit.VisitorName == visitorName && visit.CheckOutTime == nil {
			return r.clone(visit), nil
		}
	}
	return nil, nil
}

func (r *fakeVisitRepo) Close(_ context.Context, id uuid.UUID, checkOut time.Time) (*model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	visit, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("visit %s not found", id)
	}
	if visit.CheckOutTime != nil {
		return nil, apperrors.InvalidTransition("visit %s is already checked out", id)
	}
	out := checkOut
	visit.CheckOutTime = &out
	return r.clone(visit), nil
}

func (r *fakeVisitRepo) ListActive(_ context.Context) ([]model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Visit
	for _, visit := range r.items {
		if visit.CheckOutTime == nil {
			out = append(out, *r.clone(visit))
		}
	}
	return out, nil
}

func (r *fakeVisitRepo) ListByDate(_ context.Context, date time.Time) ([]model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := date.Format("2006-01-02")
	var out []model.Visit
	for _, visit := range r.items {
		if visit.CheckInTime.Format("2006-01-02") == day {
			out = append(out, *r.clone(visit))
		}
	}
	return out, nil
}

func (r *fakeVisitRepo) List(_ context.Context, _ pagination.Params) ([]model.Visit, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Visit
	for _, visit := range r.items {
		out = append(out, *r.clone(visit))
	}
	return out, int64(len(out)), nil
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.items[user.ID.String()] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("user %s not found", id)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.items {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user with email %s not found", email)
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, user := range r.items {
		out = append(out, *user)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.items[user.ID.String()] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(_ context.Context, _ *model.RefreshToken) error { return nil }
func (r *fakeUserRepo) GetRefreshToken(_ context.Context, _ string) (*model.RefreshToken, error) {
	return nil, apperrors.NotFound("refresh token not found")
}
func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, _ string) error         { return nil }
func (r *fakeUserRepo) DeleteExpiredRefreshTokens(_ context.Context, _ time.Time) error { return nil }

// --- audit and notifications ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _ string, _ pagination.Params) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditLog(nil), r.entries...), int64(len(r.entries)), nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []model.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return apperrors.NotFound("notification %s not found", id)
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
