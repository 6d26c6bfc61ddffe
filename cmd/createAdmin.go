package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/utsavrajji/FixMyArea-sub000/config"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/store"

	"github.com/spf13/cobra"
)

var demote bool

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <email>",
	Short: "Give a registered user the admin role",
	Long: `Admins promoted this way receive role=admin in the token issued at
their next login, in addition to the shared admin password login.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().BoolVar(&demote, "demote", false, "set the user back to citizen")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	if cfg.MongoURI == "" {
		return errors.New("please define the MONGODB_URI environment variable")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	role := models.RoleAdmin
	if demote {
		role = models.RoleCitizen
	}

	email := args[0]
	if err := store.NewMongoUserStore(db).SetRole(ctx, email, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no user registered with email %s", email)
		}
		return err
	}

	slog.Info("Updated user role", "email", store.NormalizeEmail(email), "role", role)
	return nil
}
