package app

import (
	"context"
	"fmt"

	"github.com/yungbote/productgraph/internal/events"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/platform/neo4jdb"
)

type Clients struct {
	Bus   events.Bus
	Neo4j *neo4jdb.Client
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var bus events.Bus = events.NewLocalBus()
	if cfg.Redis.Addr != "" {
		b, err := events.NewRedisBus(cfg.Redis, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		bus = b
	}

	// Neo4j
	graph, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		_ = bus.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}

	return Clients{Bus: bus, Neo4j: graph}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(context.Background())
	}
}
