package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"plan-dashboard/internal/planning"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// demo password of the shared admin gate, used when none is configured
const defaultAdminPassword = "jkrsarawak2026"

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string

	AdminPasswordHash []byte
	// true when the built-in demo password is in effect
	DefaultAdminPassword bool

	// ReferenceDate pins "today"; zero means the wall clock.
	ReferenceDate time.Time
	Thresholds    planning.RiskThresholds

	LogLevel  string
	LogFormat string

	Media MediaConfig
}

type MediaConfig struct {
	Driver   string // memory, fs, s3
	FSRoot   string
	MaxBytes int

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PathStyle       bool
}

// Today returns the reference date when one is configured.
func (c *Config) Today() time.Time {
	if !c.ReferenceDate.IsZero() {
		return c.ReferenceDate
	}
	return planning.DateOf(time.Now())
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		Thresholds:    planning.DefaultThresholds(),
		Media: MediaConfig{
			Driver:            os.Getenv("MEDIA_DRIVER"),
			FSRoot:            os.Getenv("MEDIA_FS_ROOT"),
			MaxBytes:          5 << 20,
			S3Bucket:          os.Getenv("MEDIA_S3_BUCKET"),
			S3Region:          os.Getenv("MEDIA_S3_REGION"),
			S3Endpoint:        os.Getenv("MEDIA_S3_ENDPOINT"),
			S3AccessKeyID:     os.Getenv("MEDIA_S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("MEDIA_S3_SECRET_ACCESS_KEY"),
			S3PathStyle:       strings.EqualFold(os.Getenv("MEDIA_S3_PATH_STYLE"), "true"),
		},
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Media.Driver == "" {
		cfg.Media.Driver = "memory"
		if cfg.Media.FSRoot != "" {
			cfg.Media.Driver = "fs"
		}
	}

	if v := os.Getenv("REFERENCE_DATE"); v != "" {
		t, ok := planning.ParseISODate(v)
		if !ok {
			return nil, fmt.Errorf("REFERENCE_DATE %q: want YYYY-MM-DD", v)
		}
		cfg.ReferenceDate = t
	}

	var err error
	if cfg.Thresholds.Margin, err = floatEnv("AT_RISK_MARGIN", cfg.Thresholds.Margin); err != nil {
		return nil, err
	}
	if cfg.Thresholds.Ratio, err = floatEnv("AT_RISK_RATIO", cfg.Thresholds.Ratio); err != nil {
		return nil, err
	}
	if v := os.Getenv("MEDIA_MAX_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MEDIA_MAX_BYTES %q: want a positive integer", v)
		}
		cfg.Media.MaxBytes = n
	}

	if err := cfg.loadAdminPassword(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, v, err)
	}
	return f, nil
}

// loadAdminPassword prefers a ready bcrypt hash, then a plain password, then
// the demo password.
func (c *Config) loadAdminPassword() error {
	if h := os.Getenv("ADMIN_PASSWORD_HASH"); h != "" {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD_HASH: %w", err)
		}
		c.AdminPasswordHash = []byte(h)
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
		c.DefaultAdminPassword = true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	c.AdminPasswordHash = hash
	return nil
}
