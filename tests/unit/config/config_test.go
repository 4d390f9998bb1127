package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookingflow/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "bookingflow-uploads", cfg.S3.Bucket)
	assert.Equal(t, "claude", cfg.Extractor.Provider)
	assert.Equal(t, 2, cfg.Extractor.MaxRetries)
	assert.Equal(t, int64(10), cfg.Ingest.MaxFileSizeMB)
	assert.Equal(t, 3, cfg.Ingest.JobConcurrency)
	assert.Equal(t, 4, cfg.Ingest.PageConcurrency)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKINGS_DB_HOST", "db.internal")
	t.Setenv("BOOKINGS_DB_PASSWORD", "s3cret")
	t.Setenv("BOOKINGS_INGEST_MAX_FILE_SIZE_MB", "25")
	t.Setenv("BOOKINGS_EXTRACTOR_PROVIDER", "claude")
	t.Setenv("BOOKINGS_EMAIL_PROVIDER", "ses")

	cfg, err := config.Load()
	assert.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Equal(t, int64(25), cfg.Ingest.MaxFileSizeMB)
	assert.Equal(t, "ses", cfg.Email.Provider)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "bookingflow",
		Password: "pw",
		Name:     "bookingflow_db",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://bookingflow:pw@localhost:5432/bookingflow_db?sslmode=disable", cfg.DSN())
}
