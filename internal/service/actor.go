package service

import (
	"github.com/google/uuid"

	"visitepulse/internal/rbac"
)

// Actor is the authenticated identity threaded explicitly through every
// lifecycle operation. It is built from validated JWT claims at the HTTP
// boundary and lives only for the request; there is no ambient session state.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// CanReview reports whether the actor may approve or reject pending requests.
func (a Actor) CanReview() bool {
	return a.Role == rbac.RoleSecretary || a.Role == rbac.RoleAdmin
}

// IsDeskStaff reports whether the actor may create on-site appointments and
// operate the visit ledger.
func (a Actor) IsDeskStaff() bool {
	return a.Role == rbac.RoleAgent || a.Role == rbac.RoleSecretary || a.Role == rbac.RoleAdmin
}

// EventPublisher pushes lifecycle events to live dashboards. The websocket
// hub implements it; services treat it as fire-and-forget.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

// NoopPublisher is used where no hub is wired (tests, CLI tools).
var NoopPublisher EventPublisher = noopPublisher{}
