package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/furniture-storefront/docs"
	"github.com/tair/furniture-storefront/internal/catalog/client"
	catalogDelivery "github.com/tair/furniture-storefront/internal/catalog/delivery/http"
	catalogDomain "github.com/tair/furniture-storefront/internal/catalog/domain"
	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/favorites"
	favoritesDelivery "github.com/tair/furniture-storefront/internal/favorites/delivery/http"
	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/popularity"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/favorites/store"
	"github.com/tair/furniture-storefront/internal/visitor"
	"github.com/tair/furniture-storefront/kafka"
	"github.com/tair/furniture-storefront/pkg/httpx"
	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/tracing"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("furniture-storefront", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", string(cfg.Environment)).
		Str("log_level", cfg.LogLevel).
		Str("version", version).
		Msg("Starting storefront service")

	tp, err := tracing.InitTracer(cfg.ServiceName, version, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := repository.NewKeyValueStore(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open favorites storage")
	}
	defer backend.Close()

	tally := popularity.NewTally()
	sink, closeEvents := startEvents(ctx, cfg, tally)
	defer closeEvents()

	registry, err := store.NewRegistry(backend.Store, cfg.Storage.RegistrySize, store.WithEventSink(sink))
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create favorites registry")
	}

	// Initialize handler with Wire DI
	favoritesHandler, err := favorites.InitializeHTTPHandler(registry, domain.RealClock{}, cfg.Endpoints.FrontendBaseURL, tally, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize favorites handler")
	}

	rdb := newRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	breaker := client.NewCircuitBreaker("catalog-api", cfg.Catalog.BreakerMaxFailures, cfg.Catalog.BreakerReset())
	catalog := newCatalogService(cfg, breaker, rdb)
	catalogHandler := catalogDelivery.NewCatalogHandler(catalog, backend.Store, cfg.Endpoints, prometheus.DefaultRegisterer)

	router := mux.NewRouter()
	mw := httpx.DefaultMiddlewareConfig(cfg.ServiceName, cfg.Endpoints.FrontendBaseURL)
	httpx.RegisterMiddlewares(router, mw)
	router.Use(visitor.Middleware(!cfg.IsDevelopment()))
	if cfg.RateLimit.Enabled && rdb != nil {
		limiter := httpx.NewRedisLimiter(rdb, cfg.Storage.Namespace, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
		router.Use(httpx.RateLimitMiddleware(limiter, httpx.ClientAddr, "/api/contact", "/admin/login"))
	}

	favoritesHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)

	httpx.RegisterHealthCheck(router, cfg.ServiceName, map[string]httpx.Check{
		"storage": func(ctx context.Context) error {
			_, _, err := backend.Store.Get(ctx, "health")
			return err
		},
		"catalog": func(context.Context) error {
			if breaker.State() == client.StateOpen {
				return client.ErrCircuitOpen
			}
			return nil
		},
	}, httpx.WithDetail("catalog_breaker", func() interface{} { return breaker.Stats() }))

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	favoritesDelivery.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpx.SetupCORS(mw)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// startEvents returns the sink favorites changes are reported to. Without
// Kafka the tally is fed directly; with Kafka every instance publishes and
// rebuilds its tally from the topic.
func startEvents(ctx context.Context, cfg *config.Config, tally *popularity.Tally) (store.Sink, func()) {
	if !cfg.Kafka.Enabled {
		return tally, func() {}
	}

	publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.Topic})
	if err != nil {
		publisher.Close()
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	consumer.RegisterHandler(kafka.EventTypeFavoritesUpdated, func(_ context.Context, e kafka.FavoritesUpdatedEvent) error {
		tally.Apply(e.StoreEvent())
		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("Kafka consumer stopped")
		}
	}()

	return publisher, func() {
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
}

// newRedis connects the client shared by the catalog cache and the rate
// limiter. Both are optional, so an unreachable server only disables them.
func newRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Catalog.CacheEnabled && !cfg.RateLimit.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, catalog cache and rate limiting disabled")
		rdb.Close()
		return nil
	}
	return rdb
}

// newCatalogService builds the backend client chain: HTTP with a circuit
// breaker, an optional Redis read cache, then the sample-data fallback.
func newCatalogService(cfg *config.Config, breaker *client.CircuitBreaker, rdb *redis.Client) catalogDomain.Service {
	httpService, err := client.NewHTTPService(cfg.Endpoints.APIBaseURL, client.NewHTTPClient(cfg.Catalog.Timeout()), breaker)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create catalog client")
	}

	var service catalogDomain.Service = httpService
	cached := cfg.Catalog.CacheEnabled && rdb != nil
	if cached {
		service = client.NewCachedService(service, client.NewRedisCache(rdb, cfg.Storage.Namespace), cfg.Catalog.CacheTTL())
	}
	if cfg.Catalog.SampleFallback {
		service = client.NewFallbackService(service, client.NewStaticService())
	}

	logger.Logger.Info().
		Str("api_base_url", cfg.Endpoints.APIBaseURL).
		Bool("cache", cached).
		Bool("sample_fallback", cfg.Catalog.SampleFallback).
		Msg("Catalog client initialized")

	return service
}
