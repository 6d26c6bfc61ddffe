// Package cmd holds the fixmyarea command line: the API server, the OTP
// mail relay and admin maintenance commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/utsavrajji/FixMyArea-sub000/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "fixmyarea",
	Short:         "Civic issue reporting backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg)
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, otpRelayCmd, createAdminCmd)
}

// Execute runs the command named on the command line; with no subcommand
// it starts the API server.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(c *config.Config) {
	var handler slog.Handler
	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
