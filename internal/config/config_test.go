package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, defaultAPIAddr, cfg.APIAddr)
	require.Equal(t, defaultRedisAddr, cfg.RedisAddr)
	require.Equal(t, defaultAllowedOrigins, cfg.AllowedOrigin)
	require.Equal(t, defaultMaxMessageLen, cfg.Chat.MaxMessageLen)
	require.Equal(t, defaultReportListMax, cfg.Chat.ReportListMax)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CHAT_MAX_MESSAGE_LEN", "500")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg := Load()
	require.Equal(t, ":9000", cfg.APIAddr)
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Equal(t, 500, cfg.Chat.MaxMessageLen)
	require.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigin)
}

func TestEnvIntFallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("CHAT_MAX_MESSAGE_LEN", "not-a-number")

	cfg := Load()
	require.Equal(t, defaultMaxMessageLen, cfg.Chat.MaxMessageLen)
}

func TestEnvCSVIgnoresEmptyEntries(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ,")

	cfg := Load()
	require.Equal(t, defaultAllowedOrigins, cfg.AllowedOrigin)
}
