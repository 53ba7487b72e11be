package rbac

// Role names carried in JWT claims and on user rows.
const (
	RoleVisitor   = "VISITOR"
	RoleSecretary = "SECRETARY"
	RoleAgent     = "AGENT"
	RoleEmployee  = "EMPLOYEE"
	RoleAdmin     = "ADMIN"
)

// Actions a role may perform on an appointment at a given status.
const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionEdit     = "edit"
	ActionCancel   = "cancel"
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
	ActionRead     = "read"
)

// PublicLandingRoute is where unauthenticated or unknown roles land.
const PublicLandingRoute = "/"

var homeRoutes = map[string]string{
	RoleVisitor:   "/visitor/dashboard",
	RoleSecretary: "/secretary/dashboard",
	RoleAgent:     "/agent/dashboard",
	RoleEmployee:  "/employee/dashboard",
	RoleAdmin:     "/admin/dashboard",
}

// HomeRoute maps a role to its landing page after authentication. Unknown or
// missing roles map to the public landing route, never to an error.
func HomeRoute(role string) string {
	if route, ok := homeRoutes[role]; ok {
		return route
	}
	return PublicLandingRoute
}

// IsKnownRole reports whether role is one of the five recognized roles.
func IsKnownRole(role string) bool {
	_, ok := homeRoutes[role]
	return ok
}

// Roles lists every recognized role.
func Roles() []string {
	return []string{RoleVisitor, RoleSecretary, RoleAgent, RoleEmployee, RoleAdmin}
}

// mutatingActions is the single source of truth for which role may mutate an
// appointment at which status. Reads are always allowed for known roles.
var mutatingActions = map[string]map[string][]string{
	"PENDING": {
		RoleVisitor:   {ActionEdit, ActionCancel},
		RoleSecretary: {ActionApprove, ActionReject, ActionEdit},
		RoleAdmin:     {ActionApprove, ActionReject, ActionEdit},
	},
	"APPROVED": {
		RoleAgent: {ActionCheckIn, ActionCheckOut},
	},
	// REJECTED and COMPLETED are terminal: read only, for everyone.
}

// PermittedActions returns the action set available to a role at an
// appointment status. Unrecognized roles get the empty set (fail closed).
// This gates UI affordances only; services re-validate independently.
func PermittedActions(role, status string) []string {
	if !IsKnownRole(role) {
		return nil
	}

	actions := []string{ActionRead}
	if byRole, ok := mutatingActions[status]; ok {
		actions = append(actions, byRole[role]...)
	}
	return actions
}

// Can reports whether the role may perform the action at the given status.
func Can(role, status, action string) bool {
	for _, a := range PermittedActions(role, status) {
		if a == action {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to on-site personnel allowed on
// the live dashboard feed.
func IsStaff(role string) bool {
	switch role {
	case RoleSecretary, RoleAgent, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}
