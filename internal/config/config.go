package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dqportal/internal/fetch"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// secretsDir is where container orchestrators mount file-based secrets.
const secretsDir = "/run/secrets"

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Fetch fetch.Config

	SchemaPath      string
	Unit            string
	ListenAddr      string
	RefreshInterval time.Duration

	// Development mode: serve payloads from mock files instead of the
	// orchestration platform.
	UseMockData          bool
	MockDescriptivesPath string
	MockStatisticsPath   string

	DataPath string
	LogDir   string
}

// Load loads the configuration from .env files, environment variables and
// file-based secrets.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for containers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	refreshHours, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_HOURS", "144"))
	pollSecs, _ := strconv.Atoi(getEnv("TASK_POLL_SECONDS", "10"))
	collaboration, _ := strconv.Atoi(getSecret("COLLABORATION_ID", "0"))
	organisation, _ := strconv.Atoi(getSecret("AGGREGATING_ORGANISATION_ID", "0"))

	cfg := &AppConfig{
		Fetch: fetch.Config{
			ServerURL:         getSecret("SERVER_URL", ""),
			APIPath:           getEnv("SERVER_API_PATH", "/api"),
			Username:          getSecret("PORTAL_USERNAME", ""),
			Password:          getSecret("PORTAL_PASSWORD", ""),
			CollaborationID:   collaboration,
			OrganisationID:    organisation,
			DescriptivesImage: getEnv("DESCRIPTIVES_IMAGE", "ghcr.io/strongaya/v6-triplestore-collaboration-descriptives:v1.0.0"),
			StatisticsImage:   getEnv("STATISTICS_IMAGE", "ghcr.io/strongaya/v6-descriptive-statistics:v1.0.0"),
			PollInterval:      time.Duration(pollSecs) * time.Second,
		},
		SchemaPath:           getEnv("SCHEMA_PATH", filepath.Join(dataPath, "schema.json")),
		Unit:                 getEnv("UNIT_LABEL", "patient"),
		ListenAddr:           getEnv("LISTEN_ADDR", ":8050"),
		RefreshInterval:      time.Duration(refreshHours) * time.Hour,
		UseMockData:          getEnvBool("USE_MOCK_DATA", false),
		MockDescriptivesPath: getEnv("MOCK_DESCRIPTIVES_PATH", filepath.Join(dataPath, "mock", "descriptives.json")),
		MockStatisticsPath:   getEnv("MOCK_STATISTICS_PATH", filepath.Join(dataPath, "mock", "statistics.json")),
		DataPath:             dataPath,
		LogDir:               logDir,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret resolves a value from a mounted secret file first, then the
// environment. Secret files win so credentials never need to live in the
// environment of a deployed container.
func getSecret(key, fallback string) string {
	path := filepath.Join(secretsDir, strings.ToLower(key))
	if content, err := os.ReadFile(path); err == nil {
		return strings.TrimSpace(string(content))
	}
	return getEnv(key, fallback)
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
