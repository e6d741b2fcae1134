package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/busseat/internal/config"
	"github.com/kirinyoku/busseat/internal/events"
	"github.com/kirinyoku/busseat/internal/layout"
	"github.com/kirinyoku/busseat/internal/notify"
	"github.com/kirinyoku/busseat/internal/postgres"
	"github.com/kirinyoku/busseat/internal/redis"
	postgresrepo "github.com/kirinyoku/busseat/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
	"github.com/kirinyoku/busseat/internal/service"
	"github.com/kirinyoku/busseat/internal/service/query"
	"github.com/kirinyoku/busseat/internal/service/reservation"
	"github.com/kirinyoku/busseat/internal/service/schedule"
	httpgin "github.com/kirinyoku/busseat/internal/transport/http/gin"
	"github.com/kirinyoku/busseat/migrations"
)

type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	cache      *redisrepo.Cache
	pubsub     *redisrepo.TripsPubSub
	publisher  events.Publisher
	services   *service.Services
	httpServer *http.Server
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pgxPool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN()})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgres.Migrate(ctx, pgxPool, migrations.FS); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		pgxPool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to initialize events publisher: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewTripsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "busseat:v1:rl:reserve", cfg.Limits.ReserveLimit, cfg.Limits.ReserveWindow)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	notifier := notify.New(cache, pubsub, publisher, logger)

	// Initialize services
	services := service.NewServices(store, cache, notifier, limiter, logger, service.Config{
		Query: query.Config{
			Layout: layout.Options{},
		},
		Reservation: reservation.Config{
			HoldTTL:    cfg.Holds.TTL,
			MinHoldTTL: cfg.Holds.MinTTL,
			MaxHoldTTL: cfg.Holds.MaxTTL,
		},
		Schedule: schedule.Config{
			Location: cfg.Schedule.Location,
		},
	})

	router := httpgin.NewRouter(services, idempotencyStore, logger, []byte(cfg.Auth.JWTSecret))

	return &App{
		cfg:       cfg,
		logger:    logger,
		pool:      pgxPool,
		rdb:       rdb,
		cache:     cache,
		pubsub:    pubsub,
		publisher: publisher,
		services:  services,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func newPublisher(cfg config.EventsConfig, logger *zap.Logger) (events.Publisher, error) {
	switch cfg.Broker {
	case config.BrokerAMQP:
		return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, logger), nil
	case config.BrokerKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	default:
		return events.Noop{}, nil
	}
}

// Run serves HTTP, sweeps expired holds and drops cached trip data on
// change notifications from other instances, until SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening",
			zap.String("host", a.cfg.Server.Host),
			zap.Int("port", a.cfg.Server.Port),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.services.Reservation.RunSweeper(gCtx, a.cfg.Holds.SweepInterval)
	})

	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, tripID int64) {
			if err := a.cache.InvalidateTrip(ctx, tripID); err != nil {
				a.logger.Warn("trip cache invalidation failed", zap.Int64("trip_id", tripID), zap.Error(err))
			}
		})
		if err != nil && gCtx.Err() == nil {
			return fmt.Errorf("trips subscription: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("events publisher close", zap.Error(err))
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("redis close", zap.Error(err))
	}
	a.pool.Close()
}
