package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment once at
// startup.
type Config struct {
	Env    string
	Port   string
	Domain string

	MongoURI      string
	MongoDatabase string
	// StoreBackend is "mongo" or "memory".
	StoreBackend string

	RedisAddress  string
	RedisPassword string

	IssueLimitQueue string
	IssueDailyLimit int

	JWTSecret     string
	TokenTTL      time.Duration
	AdminPassword string
	AdminTokenTTL time.Duration

	CORSOrigins []string

	S3Bucket        string
	AWSRegion       string
	S3PublicBaseURL string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	OTPTTL          time.Duration
	OTPHourlyLimit  int
	RelayPort       string
	CaptchaRequired bool
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}

	var errs []error
	cfg := &Config{
		Env:             getEnv("GO_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		Domain:          os.Getenv("DOMAIN"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "fixmyarea"),
		StoreBackend:    getEnv("STORE_BACKEND", "mongo"),
		RedisAddress:    getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		IssueLimitQueue: getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
		IssueDailyLimit: getInt("ISSUE_DAILY_LIMIT", 10, &errs),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getDuration("TOKEN_TTL", 72*time.Hour, &errs),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminTokenTTL:   getDuration("ADMIN_TOKEN_TTL", time.Hour, &errs),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		AWSRegion:       getEnv("AWS_REGION", "ap-south-1"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		OTPTTL:          getDuration("OTP_TTL", 10*time.Minute, &errs),
		OTPHourlyLimit:  getInt("OTP_HOURLY_LIMIT", 5, &errs),
		RelayPort:       getEnv("RELAY_PORT", "5000"),
		CaptchaRequired: getBool("CAPTCHA_REQUIRED", true, &errs),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ValidateServer reports the settings the API server cannot start without.
func (c *Config) ValidateServer() error {
	var errs []error
	if c.StoreBackend != "mongo" && c.StoreBackend != "memory" {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be mongo or memory, got %q", c.StoreBackend))
	}
	if c.StoreBackend == "mongo" && c.MongoURI == "" {
		errs = append(errs, errors.New("please define the MONGODB_URI environment variable"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD environment variable is not set"))
	}
	return errors.Join(errs...)
}

// ValidateRelay reports the settings the OTP relay cannot start without.
func (c *Config) ValidateRelay() error {
	var errs []error
	if c.SMTPHost == "" || c.SMTPFrom == "" {
		errs = append(errs, errors.New("SMTP_HOST and SMTP_FROM must be set"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
