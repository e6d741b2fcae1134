package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/fare"
	"github.com/kirinyoku/busseat/internal/notify"
	postgresrepo "github.com/kirinyoku/busseat/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
	"github.com/kirinyoku/busseat/internal/service/query"
	"github.com/kirinyoku/busseat/internal/service/reservation"
	"github.com/kirinyoku/busseat/internal/service/schedule"
	"github.com/kirinyoku/busseat/internal/service/tickets"
)

type Services struct {
	Query       *query.Service
	Reservation *reservation.Service
	Tickets     *tickets.Service
	Schedule    *schedule.Service
}

type Config struct {
	Query       query.Config
	Reservation reservation.Config
	Schedule    schedule.Config
	Now         func() time.Time
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	notifier *notify.Notifier,
	limiter *redisrepo.SlidingWindowLimiter,
	log *zap.Logger,
	cfg Config,
) *Services {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Query.Now == nil {
		cfg.Query.Now = cfg.Now
	}
	if cfg.Reservation.Now == nil {
		cfg.Reservation.Now = cfg.Now
	}
	if cfg.Schedule.Now == nil {
		cfg.Schedule.Now = cfg.Now
	}

	calc := fare.NewCalculator(log)
	seats := query.New(store, cache, calc, log, cfg.Query)

	return &Services{
		Query:       seats,
		Reservation: reservation.New(store, seats, notifier, limiter, log, cfg.Reservation),
		Tickets:     tickets.New(store, seats, calc, notifier, log, cfg.Now),
		Schedule:    schedule.New(store, notifier, log, cfg.Schedule),
	}
}
