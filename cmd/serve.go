package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/config"
	"github.com/utsavrajji/FixMyArea-sub000/controllers"
	"github.com/utsavrajji/FixMyArea-sub000/routes"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout    = 10 * time.Second
	captchaTTL         = 5 * time.Minute
	userDirectorySize  = 1024
	userDirectoryTTL   = 5 * time.Minute
	adminLoginAttempts = 10
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

// backend is the storage the API server runs on. close releases
// everything it opened.
type backend struct {
	issues   store.IssueStore
	users    store.UserStore
	contacts store.ContactStore
	rdb      *redis.Client
	notifier services.Notifier
	close    func()
}

// openBackend connects to MongoDB and Redis, or with STORE_BACKEND=memory
// keeps everything in process, including an embedded Redis.
func openBackend(ctx context.Context, c *config.Config) (*backend, error) {
	if c.StoreBackend == "memory" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		slog.Warn("Using in-memory storage, data is lost on exit")
		return &backend{
			issues:   store.NewMemoryIssueStore(),
			users:    store.NewMemoryUserStore(),
			contacts: store.NewMemoryContactStore(),
			rdb:      rdb,
			notifier: services.NewLocalNotifier(),
			close: func() {
				_ = rdb.Close()
				mr.Close()
			},
		}, nil
	}

	client, db, err := config.ConnectDB(ctx, c.MongoURI, c.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	rdb, err := config.ConnectRedis(ctx, c.RedisAddress, c.RedisPassword)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &backend{
		issues:   store.NewMongoIssueStore(db),
		users:    store.NewMongoUserStore(db),
		contacts: store.NewMongoContactStore(db),
		rdb:      rdb,
		notifier: services.NewRedisNotifier(rdb),
		close: func() {
			_ = rdb.Close()
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("Error disconnecting from MongoDB", "error", err)
			}
		},
	}, nil
}

func newImageStore(ctx context.Context, c *config.Config) (services.ImageStore, error) {
	if c.S3Bucket == "" {
		slog.Warn("S3_BUCKET is not set, image uploads are disabled")
		return services.DisabledImageStore{}, nil
	}
	return services.NewS3ImageStore(ctx, c.S3Bucket, c.AWSRegion, c.S3PublicBaseURL)
}

func buildRouter(c *config.Config, b *backend, images services.ImageStore) *gin.Engine {
	directory := services.NewUserDirectory(b.users, userDirectorySize, userDirectoryTTL)
	captcha := services.NewCaptchaService(b.rdb, captchaTTL)
	otp := services.NewOTPStore(b.rdb, c.OTPTTL)

	return routes.SetupRouter(routes.Deps{
		JWTSecret:   c.JWTSecret,
		CORSOrigins: c.CORSOrigins,
		Auth: controllers.NewAuthController(b.users, directory, captcha, otp, controllers.AuthSettings{
			JWTSecret:       c.JWTSecret,
			TokenTTL:        c.TokenTTL,
			Domain:          c.Domain,
			Production:      c.IsProduction(),
			CaptchaRequired: c.CaptchaRequired,
		}),
		Issues:            controllers.NewIssueController(b.issues, directory, b.notifier, c.CORSOrigins),
		Admin:             controllers.NewAdminController(b.issues, b.users, b.notifier, c.JWTSecret, c.AdminPassword, c.AdminTokenTTL),
		Contact:           controllers.NewContactController(b.contacts),
		Uploads:           controllers.NewUploadController(images),
		IssueLimiter:      services.NewFixedWindowLimiter(b.rdb, c.IssueLimitQueue, c.IssueDailyLimit, 24*time.Hour),
		AdminLoginLimiter: services.NewFixedWindowLimiter(b.rdb, "admin-login", adminLoginAttempts, time.Hour),
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: buildRouter(cfg, b, images),
	}
	return serveUntilDone(ctx, srv)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down
// gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
