package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rpggio/freightline/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "freightline",
	Short: "Freight job lifecycle and edit authorization server",
	Long: `freightline tracks freight-forwarding jobs through their stages, gates stage
advances on required documents, and enforces single-use edit grants.

Without a subcommand it runs the MCP server (same as "freightline serve").

Configuration comes from FREIGHT_CONFIG_PATH (YAML) overlaid with FREIGHT_*
environment variables.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runServe,
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	cfg = loaded
	cfg.Transport.Mode = strings.ToLower(cfg.Transport.Mode)

	// Keep stdout clean for JSON-RPC in stdio mode and for command output otherwise.
	logWriter := io.Writer(os.Stderr)
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log file error: %v\n", err)
		} else {
			logFile = file
			logWriter = fileWriter
		}
	}
	logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}
