package service

import (
	"strings"
	"testing"

	"visitepulse/internal/model"
	"visitepulse/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateAccessCode()
		assert.Len(t, code, 8)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestMatchAccessCode(t *testing.T) {
	code := "AB12CD34"
	appt := &model.Appointment{AccessCode: &code}

	t.Run("exact match", func(t *testing.T) {
		ok, err := MatchAccessCode(appt, "AB12CD34")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		ok, err := MatchAccessCode(appt, "ab12cd34")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		ok, err := MatchAccessCode(appt, "  AB12CD34 ")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("mismatch is false, not an error", func(t *testing.T) {
		ok, err := MatchAccessCode(appt, "XX00XX00")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nil appointment", func(t *testing.T) {
		_, err := MatchAccessCode(nil, "AB12CD34")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("consumed code", func(t *testing.T) {
		_, err := MatchAccessCode(&model.Appointment{}, "AB12CD34")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("empty stored code", func(t *testing.T) {
		empty := ""
		_, err := MatchAccessCode(&model.Appointment{AccessCode: &empty}, "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}
