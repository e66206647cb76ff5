package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rpggio/freightline/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGrantUsed = apperr.New(apperr.KindConflict, "GRANT_USED", "edit grant already used")

func TestError_IsMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("consuming grant: %w", errGrantUsed)

	require.ErrorIs(t, err, apperr.ErrConflict)
	require.ErrorIs(t, err, errGrantUsed)
	assert.False(t, errors.Is(err, apperr.ErrValidation))
	assert.False(t, errors.Is(err, apperr.New(apperr.KindConflict, "NO_GRANT", "no grant")))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{name: "validation", err: apperr.Validation("BAD_MODE", "unknown mode %q", "boat"), want: apperr.KindValidation},
		{name: "wrapped conflict", err: fmt.Errorf("x: %w", errGrantUsed), want: apperr.KindConflict},
		{name: "plain error", err: errors.New("boom"), want: apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.KindOf(tt.err))
		})
	}
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	detailed := errGrantUsed.WithDetails([]string{"a"})

	assert.Nil(t, errGrantUsed.Details)
	assert.Equal(t, []string{"a"}, detailed.Details)
	assert.Equal(t, "GRANT_USED", apperr.CodeOf(detailed))
	require.ErrorIs(t, detailed, errGrantUsed)
}
