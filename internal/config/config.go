package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Extractor ExtractorConfig
	Ingest    IngestConfig
	CORS      CORSConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds bearer token verification settings.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ExtractorConfig holds extraction provider settings.
type ExtractorConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	MaxFileSizeMB    int64 `mapstructure:"max_file_size_mb"`
	PollIntervalSecs int   `mapstructure:"poll_interval_secs"`
	JobConcurrency   int   `mapstructure:"job_concurrency"`
	PageConcurrency  int   `mapstructure:"page_concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds notification email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	PortalURL   string `mapstructure:"portal_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the BOOKINGS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "bookingflow")
	v.SetDefault("db.password", "bookingflow_secret")
	v.SetDefault("db.name", "bookingflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "bookingflow")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "bookingflow-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Extractor defaults
	v.SetDefault("extractor.provider", "claude")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 90)

	// Ingest defaults
	v.SetDefault("ingest.max_file_size_mb", 10)
	v.SetDefault("ingest.poll_interval_secs", 5)
	v.SetDefault("ingest.job_concurrency", 3)
	v.SetDefault("ingest.page_concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@bookingflow.io")
	v.SetDefault("email.from_name", "BookingFlow")
	v.SetDefault("email.portal_url", "http://localhost:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "BOOKINGS_SERVER_PORT",
		"server.read_timeout":      "BOOKINGS_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "BOOKINGS_SERVER_WRITE_TIMEOUT",
		"server.environment":       "BOOKINGS_SERVER_ENVIRONMENT",
		"db.host":                  "BOOKINGS_DB_HOST",
		"db.port":                  "BOOKINGS_DB_PORT",
		"db.user":                  "BOOKINGS_DB_USER",
		"db.password":              "BOOKINGS_DB_PASSWORD",
		"db.name":                  "BOOKINGS_DB_NAME",
		"db.sslmode":               "BOOKINGS_DB_SSLMODE",
		"db.max_open":              "BOOKINGS_DB_MAX_OPEN",
		"db.max_idle":              "BOOKINGS_DB_MAX_IDLE",
		"jwt.secret":               "BOOKINGS_JWT_SECRET",
		"jwt.issuer":               "BOOKINGS_JWT_ISSUER",
		"s3.region":                "BOOKINGS_S3_REGION",
		"s3.bucket":                "BOOKINGS_S3_BUCKET",
		"s3.endpoint":              "BOOKINGS_S3_ENDPOINT",
		"s3.access_key":            "BOOKINGS_S3_ACCESS_KEY",
		"s3.secret_key":            "BOOKINGS_S3_SECRET_KEY",
		"s3.presign_expiry":        "BOOKINGS_S3_PRESIGN_EXPIRY",
		"extractor.provider":       "BOOKINGS_EXTRACTOR_PROVIDER",
		"extractor.api_key":        "BOOKINGS_EXTRACTOR_API_KEY",
		"extractor.default_model":  "BOOKINGS_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":    "BOOKINGS_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":   "BOOKINGS_EXTRACTOR_TIMEOUT_SECS",
		"ingest.max_file_size_mb":  "BOOKINGS_INGEST_MAX_FILE_SIZE_MB",
		"ingest.poll_interval_secs": "BOOKINGS_INGEST_POLL_INTERVAL_SECS",
		"ingest.job_concurrency":   "BOOKINGS_INGEST_JOB_CONCURRENCY",
		"ingest.page_concurrency":  "BOOKINGS_INGEST_PAGE_CONCURRENCY",
		"email.provider":           "BOOKINGS_EMAIL_PROVIDER",
		"email.region":             "BOOKINGS_EMAIL_REGION",
		"email.from_address":       "BOOKINGS_EMAIL_FROM_ADDRESS",
		"email.from_name":          "BOOKINGS_EMAIL_FROM_NAME",
		"email.portal_url":         "BOOKINGS_EMAIL_PORTAL_URL",
		"log.level":                "BOOKINGS_LOG_LEVEL",
		"log.format":               "BOOKINGS_LOG_FORMAT",
		"cors.allowed_origins":     "BOOKINGS_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BOOKINGS_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BOOKINGS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Extractor = ExtractorConfig{
		Provider:     v.GetString("extractor.provider"),
		APIKey:       v.GetString("extractor.api_key"),
		DefaultModel: v.GetString("extractor.default_model"),
		MaxRetries:   v.GetInt("extractor.max_retries"),
		TimeoutSecs:  v.GetInt("extractor.timeout_secs"),
	}
	cfg.Ingest = IngestConfig{
		MaxFileSizeMB:    v.GetInt64("ingest.max_file_size_mb"),
		PollIntervalSecs: v.GetInt("ingest.poll_interval_secs"),
		JobConcurrency:   v.GetInt("ingest.job_concurrency"),
		PageConcurrency:  v.GetInt("ingest.page_concurrency"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		PortalURL:   v.GetString("email.portal_url"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}
