package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	// Database
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	SQLitePath   string
	DBMaxRetries int

	// Server
	ServerPort  string
	CORSOrigins []string

	// Logging
	LogLevel string

	// APIURL points headless replays at a running API. Empty keeps them local.
	APIURL string

	// Simulation
	PassiveIncome bool
	RevenuePeriod time.Duration
	SavePeriod    time.Duration
	SaveTimeout   time.Duration
	FrameInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	// Try to load .env file (optional for local development)
	_ = godotenv.Load()

	config := &Config{
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "transportnet"),
		DBName:       getEnv("DB_NAME", "transportnet"),
		SQLitePath:   getEnv("SQLITE_PATH", "transport-net.db"),
		DBMaxRetries: getEnvInt("DB_MAX_RETRIES", 30),

		ServerPort:  getEnv("SERVER_PORT", "3000"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3001")),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIURL:   getEnv("API_URL", ""),

		PassiveIncome: getEnvBool("PASSIVE_INCOME", true),
		RevenuePeriod: getEnvDuration("PASSIVE_REVENUE_PERIOD", time.Second),
		SavePeriod:    getEnvDuration("SAVE_PERIOD", 30*time.Second),
		SaveTimeout:   getEnvDuration("SAVE_TIMEOUT", 10*time.Second),
		FrameInterval: getEnvDuration("FRAME_INTERVAL", 16*time.Millisecond),
	}

	// Validate database driver
	switch config.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		log.Printf("WARNING: Unknown DB_DRIVER: %s (using sqlite as fallback)\n", config.DBDriver)
		config.DBDriver = DriverSQLite
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("WARNING: invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
