package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/stretchr/testify/require"
)

type testResolver struct {
	actors map[string]access.Actor
	err    error
}

func (r *testResolver) ResolveToken(_ context.Context, token string) (access.Actor, error) {
	if r.err != nil {
		return access.Actor{}, r.err
	}
	actor, ok := r.actors[token]
	if !ok {
		return access.Actor{}, ErrUnauthorized
	}
	return actor, nil
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{actors: map[string]access.Actor{
		"token": {ID: "ops-1", Role: access.RoleOperator},
	}}

	handler := AuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "ops-1", actor.ID)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		resolver *testResolver
		header   string
	}{
		{name: "missing token", resolver: &testResolver{}, header: ""},
		{name: "resolver error", resolver: &testResolver{err: errors.New("invalid")}, header: "Bearer token"},
		{name: "unknown token", resolver: &testResolver{actors: map[string]access.Actor{}}, header: "Bearer other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(tt.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
