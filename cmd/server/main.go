package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arrival-route-service/internal/adapters/cache"
	"arrival-route-service/internal/adapters/location"
	"arrival-route-service/internal/adapters/repositories"
	"arrival-route-service/internal/adapters/routing"
	"arrival-route-service/internal/api"
	"arrival-route-service/internal/api/handlers"
	"arrival-route-service/internal/config"
	"arrival-route-service/internal/platform/db"
	"arrival-route-service/internal/platform/logging"
	"arrival-route-service/internal/ports"
	"arrival-route-service/internal/services"
	"arrival-route-service/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (OSRM, Postgres, Redis, Kafka) behind ports and runs
// the session loop next to the HTTP server until a signal arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	var pool *pgxpool.Pool
	if cfg.DestinationSource == "postgres" || cfg.RouteCache == "postgres" {
		p, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
	}

	destinations, err := newDestinationRepository(cfg, pool)
	if err != nil {
		return err
	}

	provider, err := newRouteProvider(cfg, pool, rdb, log)
	if err != nil {
		return err
	}

	var push *location.PushSource
	var source ports.LocationSource
	switch cfg.LocationSource {
	case "kafka":
		k, err := location.NewKafkaSource(location.KafkaOptions{
			Brokers: cfg.Brokers(),
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
			Logger:  log,
		})
		if err != nil {
			return err
		}
		source = k
	default:
		push = location.NewPushSource()
		source = push
	}

	hub, err := stream.NewHub(ctx, rdb, log)
	if err != nil {
		return err
	}
	defer hub.Close()

	sessionID := uuid.NewString()
	publisher := stream.NewPublisher(hub, sessionID)

	orch, err := services.NewOrchestrator(ctx, services.OrchestratorConfig{
		SessionID:       sessionID,
		Destinations:    destinations,
		Source:          source,
		Provider:        provider,
		Publisher:       publisher,
		Sound:           publisher,
		Display:         publisher,
		ThresholdMeters: cfg.ProximityThresholdMeters,
		RouteTimeout:    cfg.RoutingTimeout,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	var sink handlers.PositionSink
	if push != nil {
		sink = push
	}

	router := api.NewRouter(api.Deps{
		Positions: sink,
		Session:   orch,
		Stream:    stream.Handler(hub, sessionID, orch.Snapshot, log),
		Logger:    log,
	})

	// No WriteTimeout: /ws connections are long-lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orch.Run(gctx)
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":            srv.Addr,
			"session_id":      sessionID,
			"location_source": cfg.LocationSource,
			"routing":         cfg.RoutingProvider,
			"route_cache":     cfg.RouteCache,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newDestinationRepository(cfg config.Config, pool *pgxpool.Pool) (ports.DestinationRepository, error) {
	switch cfg.DestinationSource {
	case "postgres":
		if pool == nil {
			return nil, errors.New("destination repository: postgres pool is not open")
		}
		return repositories.NewPostgresDestinationRepository(pool), nil
	default:
		return repositories.NewFileDestinationRepository(cfg.DestinationsPath), nil
	}
}

// newRouteProvider always wraps the upstream in the caching decorator so identical
// concurrent lookups collapse even without a cache backend.
func newRouteProvider(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, log *logrus.Logger) (ports.RouteProvider, error) {
	var upstream ports.RouteProvider
	switch cfg.RoutingProvider {
	case "mock":
		upstream = &routing.MockProvider{StraightLine: true}
	default:
		client, err := routing.NewOSRMClient(routing.OSRMOptions{
			BaseURL:     cfg.RoutingBaseURL,
			Profile:     cfg.RoutingProfile,
			Timeout:     cfg.RoutingTimeout,
			MaxAttempts: cfg.RoutingMaxAttempts,
			UserAgent:   "arrival-route-service",
			Logger:      log,
		})
		if err != nil {
			return nil, err
		}
		upstream = client
	}

	var routeCache ports.RouteCache
	switch cfg.RouteCache {
	case "redis":
		if rdb == nil {
			return nil, errors.New("route provider: redis client is not configured")
		}
		routeCache = cache.NewRedisRouteCache(rdb, cfg.RouteCacheTTL)
	case "postgres":
		if pool == nil {
			return nil, errors.New("route provider: postgres pool is not open")
		}
		routeCache = cache.NewSQLRouteCache(pool, cfg.RouteCacheTTL)
	}

	return routing.NewCachingProvider(upstream, routeCache, log), nil
}
