package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	ServerPort int

	// Registration storage
	DBType string // "memory", "mongo" or "influx"

	// MongoDB
	MongoURI        string
	MongoDB         string
	MongoCollection string
	MongoMaxPool    int
	MongoMinPool    int

	// InfluxDB
	InfluxURL      string
	InfluxToken    string
	InfluxDatabase string

	// Submission buffering
	BatchSize     int
	FlushInterval int // milliseconds

	// Editing sessions
	SessionTTL int // minutes

	// Logging
	LogLevel      string
	LogDir        string
	LogFileMaxAge int // days
	LogStdout     bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		DBType:     getEnv("DB_TYPE", "memory"),

		// MongoDB
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DATABASE", "solar_registration"),
		MongoCollection: getEnv("MONGO_COLLECTION", "registrations"),
		MongoMaxPool:    getEnvInt("MONGO_MAX_POOL", 20),
		MongoMinPool:    getEnvInt("MONGO_MIN_POOL", 2),

		// InfluxDB
		InfluxURL:      getEnv("INFLUXDB_URL", "http://localhost:8086"),
		InfluxToken:    getEnv("INFLUXDB_TOKEN", ""),
		InfluxDatabase: getEnv("INFLUXDB_DATABASE", "solar_registration"),

		BatchSize:     getEnvInt("BATCH_SIZE", 20),
		FlushInterval: getEnvInt("FLUSH_INTERVAL", 1000),
		SessionTTL:    getEnvInt("SESSION_TTL", 60),

		// Logging
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogDir:        getEnv("LOG_DIRECTORY", ""),
		LogFileMaxAge: getEnvInt("LOG_FILE_MAX_AGE", 2),
		LogStdout:     getEnvBool("LOG_STDOUT", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.DBType {
	case "memory", "mongo", "influx":
	default:
		return fmt.Errorf("invalid DB_TYPE: %s (use 'memory', 'mongo' or 'influx')", c.DBType)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.ServerPort)
	}

	if c.BatchSize < 1 || c.BatchSize > 1000 {
		return fmt.Errorf("invalid BATCH_SIZE: %d (must be 1-1000)", c.BatchSize)
	}

	if c.FlushInterval < 50 || c.FlushInterval > 60000 {
		return fmt.Errorf("invalid FLUSH_INTERVAL: %d (must be 50-60000ms)", c.FlushInterval)
	}

	switch c.DBType {
	case "mongo":
		if c.MongoURI == "" || c.MongoDB == "" || c.MongoCollection == "" {
			return fmt.Errorf("MONGO_URI, MONGO_DATABASE and MONGO_COLLECTION are required for DB_TYPE=mongo")
		}
		if c.MongoMinPool < 0 || c.MongoMaxPool < 1 || c.MongoMinPool > c.MongoMaxPool {
			return fmt.Errorf("invalid mongo pool: min %d, max %d", c.MongoMinPool, c.MongoMaxPool)
		}
	case "influx":
		if c.InfluxURL == "" || c.InfluxDatabase == "" {
			return fmt.Errorf("INFLUXDB_URL and INFLUXDB_DATABASE are required for DB_TYPE=influx")
		}
	}

	if c.SessionTTL < 1 {
		return fmt.Errorf("invalid SESSION_TTL: %d (must be at least 1 minute)", c.SessionTTL)
	}

	return nil
}

// FlushEvery returns the submission flush interval as a duration.
func (c *Config) FlushEvery() time.Duration {
	return time.Duration(c.FlushInterval) * time.Millisecond
}

// SessionLifetime returns the idle lifetime of an editing session.
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionTTL) * time.Minute
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
