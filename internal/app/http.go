package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/productgraph/internal/http"
	httpH "github.com/yungbote/productgraph/internal/http/handlers"
	"github.com/yungbote/productgraph/internal/observability"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/strategy"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Product  *httpH.ProductHandler
	Importer *httpH.ImporterHandler
}

func wireHandlers(log *logger.Logger, services Services, strategies *strategy.Strategies) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Product:  httpH.NewProductHandler(log, services.Products, strategies),
		Importer: httpH.NewImporterHandler(log, services.Products, strategies),
	}
}

func wireRouter(cfg Config, log *logger.Logger, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		Log:             log,
		Metrics:         metrics,
		HealthHandler:   handlers.Health,
		ProductHandler:  handlers.Product,
		ImporterHandler: handlers.Importer,
	})
}
