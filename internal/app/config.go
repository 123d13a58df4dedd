package app

import (
	"time"

	"github.com/yungbote/productgraph/internal/data/db"
	"github.com/yungbote/productgraph/internal/events"
	"github.com/yungbote/productgraph/internal/observability"
	"github.com/yungbote/productgraph/internal/platform/envutil"
	"github.com/yungbote/productgraph/internal/platform/neo4jdb"
)

type Config struct {
	LogMode     string
	HTTPAddr    string
	CORSOrigins []string

	DB db.Config

	// StrategyConfig names a YAML binding file; empty registers the built-in
	// watch mappers directly.
	StrategyConfig string
	ImportDir      string

	Redis events.RedisConfig
	Neo4j neo4jdb.Config

	Otel        observability.OtelConfig
	Metrics     observability.MetricsConfig
	MetricsAddr string
}

func LoadConfig() Config {
	return Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		CORSOrigins: envutil.List("CORS_ORIGINS"),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "productgraph"),
			SQLitePath:       envutil.String("SQLITE_PATH", "productgraph.db"),
		},

		StrategyConfig: envutil.String("STRATEGY_CONFIG", ""),
		ImportDir:      envutil.String("IMPORT_DIR", ""),

		Redis: events.RedisConfig{
			Addr:    envutil.String("REDIS_ADDR", ""),
			Channel: envutil.String("REDIS_CHANNEL", events.DefaultChannel),
		},
		Neo4j: neo4jdb.Config{
			URI:            envutil.String("NEO4J_URI", ""),
			User:           envutil.String("NEO4J_USER", "neo4j"),
			Password:       envutil.String("NEO4J_PASSWORD", ""),
			Database:       envutil.String("NEO4J_DATABASE", ""),
			TimeoutSeconds: envutil.Int("NEO4J_TIMEOUT_SECONDS", 10),
			MaxPoolSize:    envutil.Int("NEO4J_MAX_POOL_SIZE", 50),
		},

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "productgraph"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
		Metrics: observability.MetricsConfig{
			Enabled:        envutil.Bool("METRICS_ENABLED", false),
			ScrapeInterval: time.Duration(envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 10)) * time.Second,
		},
		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}
}
