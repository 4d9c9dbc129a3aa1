package container

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/qazaqtalk/backend/internal/config"
	httpdelivery "github.com/qazaqtalk/backend/internal/delivery/http"
	"github.com/qazaqtalk/backend/internal/delivery/http/handler"
	"github.com/qazaqtalk/backend/internal/infrastructure/database"
	"github.com/qazaqtalk/backend/internal/infrastructure/server"
	"github.com/qazaqtalk/backend/internal/infrastructure/telegram"
	"github.com/qazaqtalk/backend/internal/notify"
	"github.com/qazaqtalk/backend/internal/repository/postgres"
	"github.com/qazaqtalk/backend/internal/repository/redisrepo"
	"github.com/qazaqtalk/backend/internal/usecase/feedback"
	"github.com/qazaqtalk/backend/internal/usecase/matching"
	"github.com/qazaqtalk/backend/internal/usecase/register"
	"github.com/qazaqtalk/backend/internal/usecase/review"
)

// Container holds all application dependencies.
type Container struct {
	Config    *config.Config
	Log       *slog.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
	Server    *server.Server
	Scheduler *review.Scheduler
}

// NewContainer wires the application together.
func NewContainer(cfg *config.Config) (*Container, error) {
	log := newLogger(&cfg.Logging)

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	var notifier notify.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier = telegram.NewClient(cfg.Telegram.BotToken)
	} else {
		log.Warn("no bot token configured, notifications go to the log")
		notifier = notify.NewLogNotifier(log)
	}

	// Repositories
	timeout := cfg.Matching.StoreTimeout
	profileRepo := postgres.NewProfileRepository(db, timeout)
	matchRepo := postgres.NewMatchRepository(db, timeout, cfg.Matching.MatchTTL)
	exclusionRepo := postgres.NewExclusionRepository(db, timeout)
	reviewRepo := postgres.NewReviewJobRepository(db, timeout)
	feedbackRepo := postgres.NewFeedbackRepository(db, timeout)
	sessionRepo := redisrepo.NewSessionRepository(redisClient, cfg.Matching.SessionTTL)
	pendingRepo := redisrepo.NewPendingReviewRepository(redisClient, cfg.Matching.PendingReviewTTL)

	// Use cases
	engine := matching.NewEngine(profileRepo, matchRepo, exclusionRepo, notifier, matching.Policy{
		ScoreThreshold: cfg.Matching.ScoreThreshold,
		RatingFloor:    cfg.Matching.RatingFloor,
		MatchTTL:       cfg.Matching.MatchTTL,
		ReviewDelay:    cfg.Matching.ReviewDelay,
	}, log)

	aggregator := feedback.NewAggregator(feedbackRepo)
	processor := feedback.NewProcessor(
		feedbackRepo, pendingRepo, cfg.Matching.PoorScoreMax, log)

	flow := register.NewFlow(sessionRepo, profileRepo, log)

	scheduler := review.NewScheduler(
		reviewRepo, matchRepo, pendingRepo, notifier,
		cfg.Matching.SchedulerInterval, log)

	// Handlers
	matchHandler := handler.NewMatchHandler(engine, log)
	feedbackHandler := handler.NewFeedbackHandler(processor, log)
	registrationHandler := handler.NewRegistrationHandler(flow, engine, log)
	profileHandler := handler.NewProfileHandler(profileRepo, aggregator, log)

	router := httpdelivery.NewRouter(registrationHandler, matchHandler, feedbackHandler, profileHandler)
	srv := server.NewServer(&cfg.Server, router.Setup())

	return &Container{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Redis:     redisClient,
		Server:    srv,
		Scheduler: scheduler,
	}, nil
}

// Close closes all connections.
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Error("error closing redis", "err", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

func newLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
