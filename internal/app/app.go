package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evcharge/internal/config"
	"evcharge/internal/events"
	httpserver "evcharge/internal/http"
	"evcharge/internal/http/handlers"
	"evcharge/internal/password"
	redisstore "evcharge/internal/redis"
	"evcharge/internal/repository"
	"evcharge/internal/service"
	"evcharge/libs/db"
	libredis "evcharge/libs/redis"
)

// App wires booking-service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN, db.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	var locker service.SlotLocker
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		locker = redisstore.NewSlotLock(redisClient, cfg.Redis.LockTTL)
	} else {
		logger.Warn("redis not configured, booking creation is not serialized per slot")
	}

	var publisher service.EventPublisher
	if cfg.Events.AMQPURL != "" {
		publisher = events.NewPublisher(cfg.Events.AMQPURL, logger)
	}

	stationRepo := repository.NewStationRepository(sqlDB)
	bookingRepo := repository.NewBookingRepository(sqlDB)
	ownerRepo := repository.NewOwnerRepository(sqlDB)
	userRepo := repository.NewUserRepository(sqlDB)

	clock := service.SystemClock()
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)

	stationSvc := service.NewStationService(stationRepo, bookingRepo, clock, logger)
	bookingSvc := service.NewBookingService(bookingRepo, stationRepo, locker, service.RandomTokenSource(), publisher, clock, logger)
	ownerSvc := service.NewOwnerService(ownerRepo, clock)
	authSvc := service.NewAuthService(userRepo, ownerRepo, hasher, tokens)
	userSvc := service.NewUserService(userRepo, hasher)

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, logger),
		Stations: handlers.NewStationsHandler(stationSvc, logger),
		Bookings: handlers.NewBookingsHandler(bookingSvc, logger),
		Owners:   handlers.NewOwnersHandler(ownerSvc, logger),
		Users:    handlers.NewUsersHandler(userSvc, logger),
		Health:   handlers.NewHealthHandler(),
	}, tokens)

	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
