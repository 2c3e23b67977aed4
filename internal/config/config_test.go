package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weighin/weighin-go/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.EnvVars{}

	require.Equal(t, "http://localhost:8000/api", cfg.GetAPIBaseURL())
	require.Empty(t, cfg.GetRedisAddr())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Contains(t, cfg.GetSessionFile(), "session.json")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEIGHIN_API_URL", "https://api.example.com/api")
	t.Setenv("WEIGHIN_SESSION_FILE", "/tmp/weighin-session.json")
	t.Setenv("WEIGHIN_REDIS_ADDR", "localhost:6379")

	cfg := config.EnvVars{}

	require.Equal(t, "https://api.example.com/api", cfg.GetAPIBaseURL())
	require.Equal(t, "/tmp/weighin-session.json", cfg.GetSessionFile())
	require.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}
