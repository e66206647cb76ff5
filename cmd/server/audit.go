package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/sqlite"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditTrailCmd = &cobra.Command{
	Use:   "trail <entityType> <entityId>",
	Short: "Show the audit trail of a job or quote",
	Long: `Show every recorded transition of an entity, oldest first.

Examples:
  freightline audit trail job SEA-EX-25-00001
  freightline audit trail quote Q-AIR-IM-25-00003 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runAuditTrail,
}

var auditActivityCmd = &cobra.Command{
	Use:   "activity <actorId>",
	Short: "Show recent audit entries performed by an actor",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditActivity,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditTrailCmd)
	auditCmd.AddCommand(auditActivityCmd)
	auditTrailCmd.Flags().Bool("json", false, "Output as JSON")
	auditActivityCmd.Flags().Bool("json", false, "Output as JSON")
	auditActivityCmd.Flags().Int("limit", 50, "Maximum number of entries")
}

func runAuditTrail(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := audit.NewService(sqlite.NewAuditRepository(db), logger)
	entries, err := svc.Trail(cmd.Context(), audit.EntityType(strings.ToLower(args[0])), args[1])
	if err != nil {
		return fmt.Errorf("audit trail: %w", err)
	}
	return writeEntries(cmd.OutOrStdout(), entries, jsonOutput)
}

func runAuditActivity(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := audit.NewService(sqlite.NewAuditRepository(db), logger)
	entries, err := svc.ActorActivity(cmd.Context(), args[0], audit.ActorListOptions{Limit: limit})
	if err != nil {
		return fmt.Errorf("actor activity: %w", err)
	}
	return writeEntries(cmd.OutOrStdout(), entries, jsonOutput)
}

func writeEntries(out io.Writer, entries []audit.Entry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []audit.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No audit entries found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tENTITY\tACTION\tBY\tDESCRIPTION")
	for _, e := range entries {
		by := "system"
		if e.PerformedBy != nil {
			by = *e.PerformedBy
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.EntityType, e.EntityID, e.Action, by, e.Description)
	}
	return w.Flush()
}
