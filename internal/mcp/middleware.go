package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/freightline/internal/domain/access"
)

type contextKey int

const actorKey contextKey = iota

// ActorResolver resolves the actor owning a bearer token.
type ActorResolver interface {
	ResolveToken(ctx context.Context, token string) (access.Actor, error)
}

// WithActor attaches actor to ctx.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor attached by the auth middleware.
func ActorFromContext(ctx context.Context) (access.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(access.Actor)
	return actor, ok && actor.ID != ""
}

var errUnauthorized = errors.New("unauthorized")

// authMiddleware resolves bearer tokens into actors.
func authMiddleware(resolver ActorResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Protocol handshake carries no credentials.
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", errUnauthorized)
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("%w: missing bearer token", errUnauthorized)
			}

			actor, err := resolver.ResolveToken(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errUnauthorized, err)
			}
			if actor.ID == "" {
				return nil, fmt.Errorf("%w: invalid bearer token", errUnauthorized)
			}

			return next(WithActor(ctx, actor), method, req)
		}
	}
}

// noAuthMiddleware attaches a fixed actor when auth is disabled.
func noAuthMiddleware(defaultActor access.Actor) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(WithActor(ctx, defaultActor), method, req)
		}
	}
}
