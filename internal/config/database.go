package config

import (
	"context"
	"fmt"
	"time"

	"solar_registration/pkg/logger"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Database is an open connection to the registration store
type Database interface {
	Close() error
	GetType() string
}

// MemoryDatabase keeps registrations in process
type MemoryDatabase struct{}

// MongoDatabase holds the registrations collection
type MongoDatabase struct {
	Client     *mongo.Client
	Collection *mongo.Collection
}

// InfluxDatabase holds a client bound to the registration database
type InfluxDatabase struct {
	Client   *influxdb3.Client
	Database string
}

// InitDatabase opens the store selected by DB_TYPE
func InitDatabase(cfg *Config) (Database, error) {
	switch cfg.DBType {
	case "memory":
		logger.Info("Registrations are kept in memory and lost on restart")
		return &MemoryDatabase{}, nil
	case "mongo":
		return openMongo(cfg)
	case "influx":
		return openInflux(cfg)
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

func (m *MemoryDatabase) Close() error    { return nil }
func (m *MemoryDatabase) GetType() string { return "memory" }

func openMongo(cfg *Config) (*MongoDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(uint64(cfg.MongoMaxPool)).
		SetMinPoolSize(uint64(cfg.MongoMinPool)))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	col := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
	if _, err := col.Indexes().CreateMany(ctx, registrationIndexes()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Infof("MongoDB connected: %s/%s (pool %d-%d)",
		cfg.MongoDB, cfg.MongoCollection, cfg.MongoMinPool, cfg.MongoMaxPool)
	return &MongoDatabase{Client: client, Collection: col}, nil
}

// registrationIndexes serve lookups by submission time, session and plant name
func registrationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "submitted_at", Value: -1}}},
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
		{Keys: bson.D{{Key: "main_client.name", Value: 1}}},
	}
}

func (m *MongoDatabase) Close() error {
	if m.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

func (m *MongoDatabase) GetType() string { return "mongo" }

func openInflux(cfg *Config) (*InfluxDatabase, error) {
	logger.Infof("Connecting to InfluxDB: url=%s database=%s token=%s",
		cfg.InfluxURL, cfg.InfluxDatabase, maskToken(cfg.InfluxToken))

	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:     cfg.InfluxURL,
		Token:    cfg.InfluxToken,
		Database: cfg.InfluxDatabase,
		WriteOptions: &influxdb3.WriteOptions{
			DefaultTags: map[string]string{"source": "solar_registration"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("influx client creation failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// An empty database has no tables yet, so a failed probe is only a warning.
	if _, err := client.Query(ctx, "SELECT 1"); err != nil {
		logger.Warn(fmt.Sprintf("InfluxDB probe query failed: %v", err))
	} else {
		logger.Infof("InfluxDB connected: %s", cfg.InfluxDatabase)
	}

	return &InfluxDatabase{Client: client, Database: cfg.InfluxDatabase}, nil
}

func (i *InfluxDatabase) Close() error {
	if i.Client == nil {
		return nil
	}
	return i.Client.Close()
}

func (i *InfluxDatabase) GetType() string { return "influx" }

// maskToken keeps the first and last four characters of a secret
func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 8:
		return "***"
	}
	return fmt.Sprintf("%s...%s", token[:4], token[len(token)-4:])
}
