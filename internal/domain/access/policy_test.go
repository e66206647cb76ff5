package access_test

import (
	"context"
	"testing"

	"github.com/rpggio/freightline/internal/apperr"
	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Authorize(t *testing.T) {
	ctx := context.Background()
	policy := access.DefaultPolicy()

	tests := []struct {
		name    string
		role    access.Role
		cap     access.Capability
		allowed bool
	}{
		{name: "admin deletes", role: access.RoleAdmin, cap: access.CapDeleteJobs, allowed: true},
		{name: "manager approves edits", role: access.RoleManager, cap: access.CapApproveEdits, allowed: true},
		{name: "manager cannot delete", role: access.RoleManager, cap: access.CapDeleteJobs, allowed: false},
		{name: "operator manages jobs", role: access.RoleOperator, cap: access.CapManageJobs, allowed: true},
		{name: "operator cannot approve edits", role: access.RoleOperator, cap: access.CapApproveEdits, allowed: false},
		{name: "viewer reads", role: access.RoleViewer, cap: access.CapViewJobs, allowed: true},
		{name: "viewer cannot manage", role: access.RoleViewer, cap: access.CapManageJobs, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(ctx, access.Actor{ID: "u1", Role: tt.role}, tt.cap)
			if tt.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, access.ErrForbidden)
			assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
		})
	}
}

func TestPolicy_AuthorizeWithoutActor(t *testing.T) {
	err := access.DefaultPolicy().Authorize(context.Background(), access.Actor{Role: access.RoleAdmin}, access.CapViewJobs)
	require.ErrorIs(t, err, access.ErrUnknownActor)
}

func TestParseRole(t *testing.T) {
	role, err := access.ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, access.RoleManager, role)

	_, err = access.ParseRole("superuser")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCapabilitySet_Names(t *testing.T) {
	set := access.NewCapabilitySet(access.CapViewJobs, access.CapApproveEdits)
	assert.Equal(t, []string{"view_jobs", "approve_edits"}, set.Names())
	assert.False(t, set.Has(access.CapDeleteJobs))
}
