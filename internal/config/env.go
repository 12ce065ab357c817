package config

import (
	"os"
	"strconv"
)

// EnvConfig holds process-level configuration from environment variables.
// Domain settings (limits, warnings, pause rules) live in the settings
// store, not here.
type EnvConfig struct {
	Port         int
	Env          string
	AccessKey    string // gates the remote command HTTP API
	DatabasePath string
	OverrideFile string // optional settings-override JSON, hot-reloaded

	HealthCheckPath string

	// Log file configuration
	LogDir       string
	LogFile      string
	LogMaxSize   int  // max size of a log file before rotation (MB)
	LogMaxAge    int  // days to retain rotated files
	LogBackups   int  // max rotated files to retain
	LogCompress  bool // gzip rotated files
	LogToConsole bool // mirror log output to stdout
}

// NewEnvConfig reads the environment.
func NewEnvConfig() *EnvConfig {
	return &EnvConfig{
		Port:         getEnvAsInt("PORT", 3350),
		Env:          getEnv("ENV", "development"),
		AccessKey:    getEnv("ACCESS_KEY", "your-access-key"),
		DatabasePath: getEnv("DATABASE_PATH", ".config/screentimed.db"),
		OverrideFile: getEnv("SETTINGS_OVERRIDE_FILE", ".config/settings_override.json"),

		HealthCheckPath: getEnv("HEALTH_CHECK_PATH", "/health"),

		LogDir:       getEnv("LOG_DIR", "logs"),
		LogFile:      getEnv("LOG_FILE", "screentimed.log"),
		LogMaxSize:   getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxAge:    getEnvAsInt("LOG_MAX_AGE", 30),
		LogBackups:   getEnvAsInt("LOG_MAX_BACKUPS", 10),
		LogCompress:  getEnv("LOG_COMPRESS", "true") != "false",
		LogToConsole: getEnv("LOG_TO_CONSOLE", "true") != "false",
	}
}

// IsDevelopment reports whether this is a development environment.
func (c *EnvConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction reports whether this is a production environment.
func (c *EnvConfig) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			return v
		}
	}
	return defaultVal
}
