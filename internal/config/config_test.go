package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8086", cfg.Port)
	assert.Equal(t, "hr_events", cfg.AMQPExchange)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://hr.example.com, https://admin.example.com")
	t.Setenv("NOTIFY_TIMEOUT", "500ms")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.NotifyTimeout)
	assert.True(t, cfg.TracingEnabled)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")
	t.Setenv("ALLOWED_ORIGINS", " , ")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}
