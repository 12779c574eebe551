package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Dsn: "postgres://x", JwtSecret: "s", JwtExpires: "soon"}).Validate())
	assert.NoError(t, (&Config{Dsn: "postgres://x", JwtSecret: "s", JwtExpires: "2h"}).Validate())
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("DSN", "postgres://portal@localhost/portal")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAILS", "dean@uni.edu, warden@uni.edu")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")

	cfg := New()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "24h", cfg.JwtExpires)
	assert.True(t, cfg.IsAdminEmail("WARDEN@uni.edu"))
	assert.False(t, cfg.IsAdminEmail("student@uni.edu"))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.False(t, cfg.CloudinaryEnabled())
	assert.NoError(t, cfg.Validate())
}
