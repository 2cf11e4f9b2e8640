package main // entry point for the movie night API

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-night/internal/calendar"
	"github.com/iliyamo/movie-night/internal/config"
	"github.com/iliyamo/movie-night/internal/database"
	"github.com/iliyamo/movie-night/internal/handler"
	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/middleware"
	"github.com/iliyamo/movie-night/internal/queue"
	"github.com/iliyamo/movie-night/internal/repository"
	"github.com/iliyamo/movie-night/internal/router"
	"github.com/iliyamo/movie-night/internal/service"
	"github.com/iliyamo/movie-night/internal/tmdb"
)

func main() {
	log := logger.NewFromEnv()
	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			log.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	loc, err := calendar.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		log.Error("invalid SCHEDULE_TIMEZONE", "zone", cfg.ScheduleTimezone, "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	applied, err := database.Migrate(migCtx, db)
	cancel()
	if err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	for _, name := range applied {
		log.Info("migration applied", "name", name)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	movies := repository.NewMovieRepo(db)
	votes := repository.NewVoteRepo(db)
	schedules := repository.NewScheduleRepo(db)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Votes still succeed when notifications are off; the notifier is nil.
	var notifier service.Notifier
	notifyCfg := config.LoadNotifyConfig()
	var (
		dispatcher *queue.Dispatcher
		publisher  *queue.Publisher
	)
	if notifyCfg.Enabled {
		publisher = queue.NewPublisher(notifyCfg.AMQPURL, notifyCfg.Queue)
		dispatcher = queue.NewDispatcher(publisher, notifyCfg.BufferSize, notifyCfg.PublishTimeout, log.With("component", "notify"))
		dispatcher.Start()
		notifier = dispatcher

		if notifyCfg.ConsumerEnabled {
			var deliverer queue.Deliverer = queue.LogDeliverer{Log: log.With("component", "notify")}
			if notifyCfg.WebhookURL != "" {
				deliverer = queue.NewWebhook(notifyCfg.WebhookURL, notifyCfg.WebhookTimeout, notifyCfg.MaxAttempts, notifyCfg.RetryBackoff)
			}
			consumer := queue.NewConsumer(notifyCfg.AMQPURL, notifyCfg.Queue, deliverer, log.With("component", "consumer"))
			go func() {
				if err := consumer.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("vote consumer stopped", "error", err)
				}
			}()
		}
	}

	sessionSvc := service.NewSessionService(users, sessions, cfg.IDPSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	suggestionSvc := service.NewSuggestionService(movies)
	votingSvc := service.NewVotingService(movies, votes, notifier)
	schedulingSvc := service.NewSchedulingService(movies, schedules, loc, cfg.AllowSameDaySchedules)
	searchSvc := service.NewSearchService(tmdb.NewClient(config.LoadTMDBConfig(), log.With("component", "tmdb")))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	// Inside Recover so a captured panic is re-raised and still answered with 500.
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				log.Error("request failed", append(args, "error", v.Error)...)
				return nil
			}
			log.Info("request", args...)
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	deps := router.Deps{
		Sessions:   sessionSvc,
		CookieName: cfg.SessionCookie,
		Log:        log,
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:      middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
		DB:         db,
	}
	router.RegisterRoutes(e, deps)
	router.RegisterAuth(e, handler.NewAuthHandler(sessionSvc, cfg.SessionCookie, cfg.CookieSecure, log), deps)
	router.RegisterMovies(e, handler.NewMovieHandler(suggestionSvc, votingSvc, searchSvc, log), deps)
	router.RegisterAdmin(e, handler.NewAdminHandler(schedulingSvc, log), deps)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	stop()
	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			log.Warn("notification queue not drained", "error", err)
		}
	}
	if publisher != nil {
		_ = publisher.Close()
	}
}
