package main

import (
	"errors"
	"fmt"

	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/repository"
	"github.com/rpggio/freightline/internal/sqlite"
	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apikeyAddCmd = &cobra.Command{
	Use:   "add <actorId> <role> <name>",
	Short: "Issue an API key for an actor",
	Long: `Issue a bearer token for an actor. Roles: admin, manager, operator, viewer.

The token is printed once; only its hash is stored.

Examples:
  freightline apikey add mgr-1 manager "Sam Ortiz" --email sam@example.com`,
	Args: cobra.ExactArgs(3),
	RunE: runAPIKeyAdd,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyAddCmd)
	apikeyAddCmd.Flags().String("email", "", "Email address used for edit grant notifications")
}

func runAPIKeyAdd(cmd *cobra.Command, args []string) error {
	role, err := access.ParseRole(args[1])
	if err != nil {
		return err
	}
	email, _ := cmd.Flags().GetString("email")

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	token, err := sqlite.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	actor, err := sqlite.NewActorRepository(db).AddKey(cmd.Context(), token, access.Actor{
		ID:    args[0],
		Name:  args[2],
		Email: email,
		Role:  role,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("key collision, retry: %w", err)
	}
	if err != nil {
		return err
	}

	logger.Info("api key issued", "actor", actor.ID, "role", actor.Role)
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "actor: %s (%s)\n", actor.ID, actor.Role)
	_, _ = fmt.Fprintf(out, "token: %s\n", token)
	return nil
}
