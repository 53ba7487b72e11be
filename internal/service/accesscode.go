package service

import (
	"strings"

	"visitepulse/internal/model"
	"visitepulse/pkg/apperrors"

	"github.com/google/uuid"
)

// GenerateAccessCode issues the opaque secret attached to an appointment on
// approval. Short enough to type at the desk, unique enough for a QR badge.
func GenerateAccessCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// MatchAccessCode verifies a presented code against the code stored on an
// appointment. Manual entry and QR scans both funnel through this comparison,
// so behavior is identical regardless of capture method. A mismatch is an
// expected outcome, not an error; the only error is an absent code (the
// appointment was never approved, or check-in already consumed it).
func MatchAccessCode(appt *model.Appointment, presented string) (bool, error) {
	if appt == nil {
		return false, apperrors.NotFound("appointment not found")
	}
	if appt.AccessCode == nil || *appt.AccessCode == "" {
		return false, apperrors.NotFound("appointment has no active access code")
	}
	return strings.EqualFold(strings.TrimSpace(presented), *appt.AccessCode), nil
}
