package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/freightline/internal/domain/access"
)

// Config contains server configuration.
type Config struct {
	Services      Services
	Authorizer    access.Authorizer
	Resolver      ActorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultActor  access.Actor
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "freightline",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is a local, single-operator transport and never authenticates.
	identify := noAuthMiddleware(cfg.DefaultActor)
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		identify = authMiddleware(cfg.Resolver)
	}
	// Listed middleware runs first to last, so inbound traffic is logged with its actor.
	server.AddReceivingMiddleware(identify, trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services, cfg.Authorizer))

	return server
}
