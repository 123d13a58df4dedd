package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/productgraph/internal/data/db"
	"github.com/yungbote/productgraph/internal/events"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/samples/watch"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "REDIS_ADDR", "REDIS_CHANNEL", "CORS_ORIGINS", "OTEL_SAMPLER_RATIO", "METRICS_SCRAPE_INTERVAL_SECONDS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.HTTPAddr != ":8080" || cfg.DB.Driver != db.DriverPostgres {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.Channel != events.DefaultChannel {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if len(cfg.CORSOrigins) != 0 || cfg.Otel.SampleRatio != 0.1 || cfg.Metrics.ScrapeInterval != 10*time.Second {
		t.Fatalf("unexpected ambient defaults: %+v", cfg)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/pg.db")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("NEO4J_MAX_POOL_SIZE", "7")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")
	t.Setenv("METRICS_ENABLED", "true")

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":9000" || cfg.DB.Driver != db.DriverSQLite || cfg.DB.SQLitePath != "/tmp/pg.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.Neo4j.MaxPoolSize != 7 || cfg.Otel.SampleRatio != 0.5 || !cfg.Metrics.Enabled {
		t.Fatalf("unexpected client config: %+v", cfg)
	}
}

func TestBuildStrategiesRegistersWatches(t *testing.T) {
	s, err := buildStrategies(Config{}, logger.Nop())
	if err != nil {
		t.Fatalf("buildStrategies: %v", err)
	}
	b, err := s.Types().ResolveBinding(watch.KindSmartWatch)
	if err != nil || b.Kind != watch.KindWatch {
		t.Fatalf("SmartWatchProduct should fall back to WatchProduct: %+v %v", b, err)
	}
}

func TestBuildStrategiesFromBindingFile(t *testing.T) {
	s, err := buildStrategies(Config{StrategyConfig: filepath.Join("..", "..", "configs", "strategies.yaml")}, logger.Nop())
	if err != nil {
		t.Fatalf("buildStrategies: %v", err)
	}
	b, err := s.Types().ResolveBinding(watch.KindWatch)
	if err != nil || b.Strategy != watch.StrategyWatch {
		t.Fatalf("WatchProduct binding: %+v %v", b, err)
	}
	inst, err := s.Instances().ResolveBinding(watch.KindWatchInstance)
	if err != nil || inst.Strategy != watch.StrategyInstance {
		t.Fatalf("WatchInstance binding: %+v %v", inst, err)
	}
}

func TestBuildStrategiesRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yaml")
	doc := "bindings:\n  - family: type\n    kind: WatchProduct\n    strategy: nope\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := buildStrategies(Config{StrategyConfig: path}, logger.Nop()); err == nil {
		t.Fatalf("expected error for unpublished strategy")
	}
}
