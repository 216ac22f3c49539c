package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	StoreDriver string   `mapstructure:"STORE_DRIVER"`
	MongoURI    string   `mapstructure:"MONGO_URI"`
	MongoDB     string   `mapstructure:"MONGO_DB"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	TriggerSecret string `mapstructure:"TRIGGER_SECRET"`

	PushDriver   string `mapstructure:"PUSH_DRIVER"`
	FCMCredentialsFile string `mapstructure:"FCM_CREDENTIALS_FILE"`
	FCMProjectID       string `mapstructure:"FCM_PROJECT_ID"`

	SchedulerEnabled   bool          `mapstructure:"SCHEDULER_ENABLED"`
	SchedulerSpec      string        `mapstructure:"SCHEDULER_SPEC"`
	SchedulerLock      bool          `mapstructure:"SCHEDULER_LOCK"`
	ReminderDelay      time.Duration `mapstructure:"REMINDER_DELAY"`
	ReminderBatchLimit int           `mapstructure:"REMINDER_BATCH_LIMIT"`

	DefaultCurrency string `mapstructure:"DEFAULT_CURRENCY"`

	SMTPHost  string `mapstructure:"SMTP_HOST"`
	SMTPPort  int    `mapstructure:"SMTP_PORT"`
	EmailUser string `mapstructure:"EMAIL_USER"`
	EmailPass string `mapstructure:"EMAIL_PASS"`

	CloudinaryCloudName    string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey       string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret    string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryUploadPreset string `mapstructure:"CLOUDINARY_UPLOAD_PRESET"`

	// EnvFileLoaded is false when no .env file was read.
	EnvFileLoaded bool `mapstructure:"-"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "STORE_DRIVER", "MONGO_URI", "MONGO_DB", "CORS_ORIGINS",
	"JWT_SECRET", "TOKEN_TTL", "REDIS_ADDR", "TRIGGER_SECRET",
	"PUSH_DRIVER", "FCM_CREDENTIALS_FILE", "FCM_PROJECT_ID",
	"SCHEDULER_ENABLED", "SCHEDULER_SPEC", "SCHEDULER_LOCK", "REMINDER_DELAY", "REMINDER_BATCH_LIMIT",
	"DEFAULT_CURRENCY",
	"SMTP_HOST", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASS",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "CLOUDINARY_UPLOAD_PRESET",
}

// Load reads .env (when present) and the process environment. Callers log
// the missing-file case once their logger exists.
func Load() (*Config, error) {
	envFileLoaded := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("MONGO_DB", "doctor_booking")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("PUSH_DRIVER", "log")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_SPEC", "@every 1m")
	v.SetDefault("SCHEDULER_LOCK", false)
	v.SetDefault("REMINDER_DELAY", "2m")
	v.SetDefault("REMINDER_BATCH_LIMIT", 250)
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("SMTP_PORT", 587)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.EnvFileLoaded = envFileLoaded

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// MailEnabled reports whether SMTP settings are complete enough to send email.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.EmailUser != ""
}

// CloudinaryEnabled reports whether photo uploads can be served.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Validate checks driver selections and the settings each one depends on.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres":
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER is \"mongo\"")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be \"postgres\" or \"mongo\", got %q", c.StoreDriver)
	}

	switch c.PushDriver {
	case "log":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when PUSH_DRIVER is \"redis\"")
		}
	case "fcm":
		if c.FCMCredentialsFile == "" {
			return fmt.Errorf("FCM_CREDENTIALS_FILE is required when PUSH_DRIVER is \"fcm\"")
		}
	default:
		return fmt.Errorf("PUSH_DRIVER must be \"log\", \"fcm\", or \"redis\", got %q", c.PushDriver)
	}

	if c.SchedulerLock && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when SCHEDULER_LOCK is enabled")
	}
	if c.ReminderDelay < 0 {
		return fmt.Errorf("REMINDER_DELAY must not be negative")
	}
	if c.ReminderBatchLimit <= 0 {
		return fmt.Errorf("REMINDER_BATCH_LIMIT must be positive, got %d", c.ReminderBatchLimit)
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	return nil
}
