package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/productgraph/internal/http/handlers"
	httpMW "github.com/yungbote/productgraph/internal/http/middleware"
	"github.com/yungbote/productgraph/internal/observability"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	Log         *logger.Logger
	Metrics     *observability.Metrics

	ProductHandler  *httpH.ProductHandler
	ImporterHandler *httpH.ImporterHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Product types
		if cfg.ProductHandler != nil {
			api.GET("/types", cfg.ProductHandler.ListTypes)
			api.GET("/types/:id", cfg.ProductHandler.GetType)
			api.GET("/types/:id/used-by", cfg.ProductHandler.ListUsedBy)
			api.POST("/types/:id/duplicate", cfg.ProductHandler.DuplicateType)
			api.GET("/types/:id/recipes", cfg.ProductHandler.ListRecipes)
			api.GET("/types/:id/instances", cfg.ProductHandler.ListInstances)
			api.GET("/instances/:id", cfg.ProductHandler.GetInstance)
		}

		// Importers
		if cfg.ImporterHandler != nil {
			api.GET("/importers", cfg.ImporterHandler.ListImporters)
			api.POST("/importers/:name", cfg.ImporterHandler.RunImport)
		}
	}

	return r
}
