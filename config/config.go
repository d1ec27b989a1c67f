package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"pointsbot/database"
)

// Storage backends
const (
	StorageBackendPostgres = "postgres"
	StorageBackendJSONFile = "jsonfile"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Optional guild for command registration; empty registers globally

	// Storage configuration
	StorageBackend string // "postgres" or "jsonfile"
	DatabaseURL    string
	DatabaseName   string
	DataFile       string // Path of the JSON document used by the jsonfile backend

	// Permissions
	AdminRoles []string // Role names treated as administrators in addition to the Administrator permission

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables mirroring

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the bot runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		// Storage
		StorageBackend: strings.ToLower(getEnvWithDefault("STORAGE_BACKEND", StorageBackendPostgres)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseName:   os.Getenv("DATABASE_NAME"),
		DataFile:       getEnvWithDefault("DATA_FILE", "data/points.json"),

		// Permissions
		AdminRoles: parseList(getEnvWithDefault("ADMIN_ROLES", "The Owner,Co-Owner")),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "pointsbot"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: 60000,

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if err := config.validate(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}

	switch c.StorageBackend {
	case StorageBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	case StorageBackendJSONFile:
		if strings.TrimSpace(c.DataFile) == "" {
			return fmt.Errorf("DATA_FILE is required for the jsonfile storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND: %s", c.StorageBackend)
	}

	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseList splits a comma separated value, dropping blanks
func parseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:             "test-token",
		StorageBackend:           StorageBackendPostgres,
		DataFile:                 "data/points.json",
		AdminRoles:               []string{"The Owner", "Co-Owner"},
		OTelServiceName:          "pointsbot",
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 60000,
		LogLevel:                 "debug",
		Environment:              "test",
	}
}
