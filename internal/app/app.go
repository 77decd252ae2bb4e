package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eldenfruit/storefront/internal/catalog"
	"github.com/eldenfruit/storefront/internal/config"
	"github.com/eldenfruit/storefront/internal/event"
	handler "github.com/eldenfruit/storefront/internal/handler/http"
	"github.com/eldenfruit/storefront/internal/notify"
	"github.com/eldenfruit/storefront/internal/pricing"
	"github.com/eldenfruit/storefront/internal/promo"
	"github.com/eldenfruit/storefront/internal/repository"
	"github.com/eldenfruit/storefront/internal/repository/memory"
	redisrepo "github.com/eldenfruit/storefront/internal/repository/redis"
	"github.com/eldenfruit/storefront/internal/service"
	"github.com/eldenfruit/storefront/internal/session"
	"github.com/eldenfruit/storefront/pkg/database"
	"github.com/eldenfruit/storefront/pkg/health"
	"github.com/eldenfruit/storefront/pkg/httpclient"
	pkgkafka "github.com/eldenfruit/storefront/pkg/kafka"
	"github.com/eldenfruit/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerShutdown = shutdown

	// Key-value store behind the cart, user and users keys.
	kv, err := a.openStore(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	// Catalog and promo rules.
	products, err := a.loadCatalog(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	promos := promo.Default()
	if cfg.PromoCatalogFile != "" {
		if promos, err = promo.LoadFile(cfg.PromoCatalogFile); err != nil {
			a.closeAll()
			return nil, fmt.Errorf("load promo catalog: %w", err)
		}
	}
	logger.Info("promo catalog loaded", slog.Int("codes", len(promos.Rules())))

	// Events.
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	var events service.EventPublisher = event.Nop{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, sessionID, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	sessions := session.NewManager(repository.NewUserStore(kv), logger)
	feed := notify.NewFeed(cfg.NoticeCapacity, logger)
	cartService := service.NewCartService(service.Dependencies{
		Repo:            repository.NewCartStore(kv, logger),
		Auth:            sessions,
		Catalog:         products,
		Notifier:        feed,
		Events:          events,
		Promos:          promos,
		Pricing:         pricing.NewEngine(cfg.PricingPolicy()),
		Logger:          logger,
		ConfirmationTTL: cfg.ConfirmationTTL,
	})
	// Publish the persisted item count before the first poll. A failure here
	// is retried on the first cart request.
	if err := cartService.Warm(ctx); err != nil {
		logger.Warn("failed to warm cart", slog.String("error", err.Error()))
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("store", kv.Ping)
	if a.producer != nil {
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Cart:          cartService,
		Catalog:       products,
		Sessions:      sessions,
		Feed:          feed,
		Health:        healthHandler,
		Logger:        logger,
		CORS:          cfg.CORS,
		RateLimit:     cfg.RateLimit,
		PprofCIDRs:    cfg.PprofCIDRs,
		CatalogMaxAge: cfg.CatalogMaxAge,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

func (a *App) openStore(ctx context.Context) (repository.KV, error) {
	if a.cfg.StoreBackend == config.BackendMemory {
		a.logger.Warn("using in-memory store, state is lost on restart")
		return memory.New(), nil
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = a.cfg.RedisHost
	redisCfg.Port = a.cfg.RedisPort
	redisCfg.Password = a.cfg.RedisPassword
	redisCfg.DB = a.cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	database.SetSlowCommandLogging(a.cfg.RedisSlowThreshold, a.logger)

	a.logger.Info("connected to Redis",
		slog.String("addr", redisCfg.Addr()),
		slog.Int("db", redisCfg.DB),
		slog.String("namespace", a.cfg.RedisNamespace),
	)
	return redisrepo.NewKV(rdb, a.cfg.RedisNamespace, a.cfg.RedisTTL), nil
}

// loadCatalog reads the product catalog. A missing local file yields an
// empty catalog so the cart still works without one.
func (a *App) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if a.cfg.CatalogSource == "" {
		return catalog.New(nil), nil
	}

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		a.logger,
	)
	c, err := catalog.Load(ctx, a.cfg.CatalogSource, client, a.logger)
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("catalog file not found, starting with an empty catalog",
			slog.String("source", a.cfg.CatalogSource),
		)
		return catalog.New(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeAll()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.closeAll()

	a.logger.Info("application shutdown complete")
	return nil
}

// closeAll releases the store, producer and tracer. It is safe to call on a
// partially built App.
func (a *App) closeAll() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.tracerShutdown = nil
	}
}
