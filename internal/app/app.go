package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/data/db"
	"github.com/yungbote/productgraph/internal/events"
	apphttp "github.com/yungbote/productgraph/internal/http"
	"github.com/yungbote/productgraph/internal/observability"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/strategy"
)

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Router     *gin.Engine
	Cfg        Config
	Strategies *strategy.Strategies
	Clients    Clients
	Services   Services
	Metrics    *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Configuration loaded", "db_driver", cfg.DB.Driver, "http_addr", cfg.HTTPAddr)

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)
	metrics := observability.Init(cfg.Metrics)

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	strategies, err := buildStrategies(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(dbService.DB(), log, cfg, strategies, clients)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, strategies)
	router := wireRouter(cfg, log, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           dbService.DB(),
		Router:       router,
		Cfg:          cfg,
		Strategies:   strategies,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background collectors and the type change log listener.
// The metrics endpoint itself is served by Run.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.Redis.Addr)

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.Subscribe(ctx, func(ev events.TypeChanged) {
			a.Log.Debug("type changed", "event_id", ev.ID.String(), "change", string(ev.Change), "type_id", ev.TypeID, "identity", ev.Identity.String())
		}); err != nil {
			a.Log.Warn("type change listener not started", "error", err)
		}
	}
}

func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.HTTPAddr
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return (&apphttp.Server{Engine: a.Router}).Run(gctx, addr)
	})
	g.Go(func() error {
		return a.Metrics.Serve(gctx, a.Log, a.Cfg.MetricsAddr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
