package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Mutating routes are open (default)
	AuthModeToken AuthMode = "token" // Mutating routes require a bearer token
)

// DefaultDatabasePath is the default path for the catalog database.
const DefaultDatabasePath = "./catalog.db"

type (
	Config struct {
		HTTP
		Global
		Database
		Uploads
		Log
		CORS
		Auth
		Tasks
		UploadSweep
	}

	HTTP struct {
		Port           int32
		Host           string
		MaxUploadBytes int64
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Uploads struct {
		Dir string // Public directory served at /uploads
	}
	Log struct {
		Level  string
		Format string // "json" or "console"
	}
	CORS struct {
		AllowedOrigins []string
	}
	Auth struct {
		Mode              AuthMode
		TokenSecret       string
		AdminPasswordHash string // bcrypt hash
		TokenExpiry       time.Duration
		BcryptCost        int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	UploadSweep struct {
		Enabled  bool
		Schedule string        // Cron format: "30 3 * * *" = daily at 03:30
		Grace    time.Duration // Files younger than this are never swept
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("http_max_upload_bytes", 10<<20)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("uploads_dir", "./public/uploads")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_allowed_origins", "*")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_token_secret", "")
	v.SetDefault("auth_admin_password_hash", "")
	v.SetDefault("auth_token_expiry", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Orphan upload sweep defaults
	v.SetDefault("upload_sweep_enabled", true)
	v.SetDefault("upload_sweep_schedule", "30 3 * * *")
	v.SetDefault("upload_sweep_grace", "1h")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			MaxUploadBytes: v.GetInt64("HTTP_MAX_UPLOAD_BYTES"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Uploads: Uploads{
			Dir: v.GetString("UPLOADS_DIR"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Auth: Auth{
			Mode:              AuthMode(v.GetString("AUTH_MODE")),
			TokenSecret:       v.GetString("AUTH_TOKEN_SECRET"),
			AdminPasswordHash: v.GetString("AUTH_ADMIN_PASSWORD_HASH"),
			TokenExpiry:       v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		UploadSweep: UploadSweep{
			Enabled:  v.GetBool("UPLOAD_SWEEP_ENABLED"),
			Schedule: v.GetString("UPLOAD_SWEEP_SCHEDULE"),
			Grace:    v.GetDuration("UPLOAD_SWEEP_GRACE"),
		},
	}
}

// splitList turns a comma-separated env value into a trimmed list.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
