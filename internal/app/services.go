package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/data/graph"
	"github.com/yungbote/productgraph/internal/data/repos"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/services"
	"github.com/yungbote/productgraph/internal/storage"
	"github.com/yungbote/productgraph/internal/strategy"
)

type Services struct {
	Storage   *storage.ProductStorage
	Products  services.ProductManagement
	Importers *importers.Registry
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, strategies *strategy.Strategies, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	store := storage.New(db, log, strategies, repos.NewCatalog(db, log))

	registry, err := importers.NewRegistry(
		importers.NewFileImporter("yaml", cfg.ImportDir, strategies, log),
	)
	if err != nil {
		return Services{}, err
	}

	mirror := graph.NewProductMirror(clients.Neo4j, log)
	return Services{
		Storage:   store,
		Products:  services.NewProductManagement(db, log, store, registry, clients.Bus, mirror),
		Importers: registry,
	}, nil
}
