package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHomeRouteNeverErrors(t *testing.T) {
	cases := map[string]string{
		RoleVisitor:   "/visitor/dashboard",
		RoleSecretary: "/secretary/dashboard",
		RoleAgent:     "/agent/dashboard",
		RoleEmployee:  "/employee/dashboard",
		RoleAdmin:     "/admin/dashboard",
		"":            PublicLandingRoute,
		"SUPERUSER":   PublicLandingRoute,
		"visitor":     PublicLandingRoute, // role names are case-sensitive
	}
	for role, want := range cases {
		assert.Equal(t, want, HomeRoute(role), "role %q", role)
	}
}

func TestPermittedActionsFailClosed(t *testing.T) {
	for _, status := range []string{"PENDING", "APPROVED", "REJECTED", "COMPLETED"} {
		assert.Nil(t, PermittedActions("SUPERUSER", status))
		assert.Nil(t, PermittedActions("", status))
	}
}

func TestKnownRolesAlwaysGetRead(t *testing.T) {
	for _, role := range Roles() {
		for _, status := range []string{"PENDING", "APPROVED", "REJECTED", "COMPLETED"} {
			assert.Contains(t, PermittedActions(role, status), ActionRead, "role %s status %s", role, status)
		}
	}
}

func TestTerminalStatusesAreReadOnly(t *testing.T) {
	for _, role := range Roles() {
		for _, status := range []string{"REJECTED", "COMPLETED"} {
			assert.Equal(t, []string{ActionRead}, PermittedActions(role, status), "role %s status %s", role, status)
		}
	}
}

func TestVisitorOnlyMutatesPending(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{ActionRead, ActionEdit, ActionCancel},
		PermittedActions(RoleVisitor, "PENDING"))

	for _, status := range []string{"APPROVED", "REJECTED", "COMPLETED"} {
		for _, action := range []string{ActionEdit, ActionCancel, ActionApprove, ActionReject, ActionCheckIn} {
			assert.False(t, Can(RoleVisitor, status, action), "visitor %s on %s", action, status)
		}
	}
}

func TestReviewerActions(t *testing.T) {
	for _, role := range []string{RoleSecretary, RoleAdmin} {
		assert.True(t, Can(role, "PENDING", ActionApprove), role)
		assert.True(t, Can(role, "PENDING", ActionReject), role)
		assert.False(t, Can(role, "APPROVED", ActionApprove), role)
		assert.False(t, Can(role, "APPROVED", ActionCheckIn), role)
	}
	assert.False(t, Can(RoleEmployee, "PENDING", ActionApprove))
	assert.False(t, Can(RoleAgent, "PENDING", ActionApprove))
}

func TestAgentChecksInApprovedOnly(t *testing.T) {
	assert.True(t, Can(RoleAgent, "APPROVED", ActionCheckIn))
	assert.True(t, Can(RoleAgent, "APPROVED", ActionCheckOut))
	assert.False(t, Can(RoleAgent, "PENDING", ActionCheckIn))
	assert.False(t, Can(RoleAgent, "COMPLETED", ActionCheckIn))
}

func TestIsStaff(t *testing.T) {
	assert.False(t, IsStaff(RoleVisitor))
	assert.False(t, IsStaff("SUPERUSER"))
	for _, role := range []string{RoleSecretary, RoleAgent, RoleEmployee, RoleAdmin} {
		assert.True(t, IsStaff(role), role)
	}
}
