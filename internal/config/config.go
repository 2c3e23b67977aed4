package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	apiBaseURLVar  = "WEIGHIN_API_URL"
	sessionFileVar = "WEIGHIN_SESSION_FILE"
	redisAddrVar   = "WEIGHIN_REDIS_ADDR"
	envVar         = "WEIGHIN_ENV"
	logLevelVar    = "WEIGHIN_LOG_LEVEL"
)

type Config interface {
	// GetAPIBaseURL returns the backend base URL including the /api prefix.
	GetAPIBaseURL() string
	// GetSessionFile returns where the file-backed session store lives.
	GetSessionFile() string
	// GetRedisAddr returns the Redis address for shared session storage,
	// empty when the file store should be used.
	GetRedisAddr() string
	GetEnv() string
	GetLogLevel() string
}

type EnvVars struct{}

var _ Config = EnvVars{}

// New loads a .env file when one is present and returns the env-backed
// config.
func New() Config {
	_ = godotenv.Load()
	return EnvVars{}
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8000/api")
}

func (EnvVars) GetSessionFile() string {
	if v := os.Getenv(sessionFileVar); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".weighin", "session.json")
	}
	return filepath.Join(home, ".weighin", "session.json")
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetEnv reads an environment variable with a fallback default.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
