package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/freightline/internal/mcp"
	"github.com/rpggio/freightline/internal/transport"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over stdio or streamable HTTP, as selected by
FREIGHT_TRANSPORT.

In stdio mode requests act as FREIGHT_DEFAULT_ACTOR. In HTTP mode with
FREIGHT_AUTH_ENABLED=true every request needs a bearer token issued by
"freightline apikey add".`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	actor, err := defaultActor(cfg)
	if err != nil {
		return err
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.services,
		Authorizer:    a.policy,
		Resolver:      a.actors,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultActor:  actor,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, mcpServer)
	}
	return runHTTPMode(ctx, mcpServer, a)
}

func runStdioMode(ctx context.Context, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled", "actor", cfg.Auth.DefaultActor)

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, mcpServer *sdkmcp.Server, a *app) error {
	opts := transport.Options{Logger: logger}
	if cfg.Auth.Enabled {
		opts.Auth = transport.AuthMiddleware(a.actors)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewRouter(mcpServer, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
