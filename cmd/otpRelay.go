package cmd

import (
	"net/http"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/config"
	"github.com/utsavrajji/FixMyArea-sub000/controllers"
	"github.com/utsavrajji/FixMyArea-sub000/routes"
	"github.com/utsavrajji/FixMyArea-sub000/services"

	"github.com/spf13/cobra"
)

var otpRelayCmd = &cobra.Command{
	Use:   "otp-relay",
	Short: "Run the OTP mail relay",
	Long: `The relay mails one-time passcodes and verifies them. Codes live in
the same Redis the API server uses, so the password reset endpoint can
consume them.`,
	RunE: runOTPRelay,
}

func runOTPRelay(cmd *cobra.Command, _ []string) error {
	if err := cfg.ValidateRelay(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	rdb, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		return err
	}
	defer rdb.Close()

	otp := controllers.NewOTPController(
		services.NewOTPStore(rdb, cfg.OTPTTL),
		services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom),
		services.NewFixedWindowLimiter(rdb, "otp-send", cfg.OTPHourlyLimit, time.Hour),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.RelayPort,
		Handler: routes.SetupRelayRouter(otp, cfg.CORSOrigins),
	}
	return serveUntilDone(ctx, srv)
}
