package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/config"
	"github.com/iliyamo/movie-grid/internal/database"
	"github.com/iliyamo/movie-grid/internal/game"
	"github.com/iliyamo/movie-grid/internal/handler"
	"github.com/iliyamo/movie-grid/internal/metrics"
	"github.com/iliyamo/movie-grid/internal/middleware"
	"github.com/iliyamo/movie-grid/internal/queue"
	"github.com/iliyamo/movie-grid/internal/repository"
	"github.com/iliyamo/movie-grid/internal/router"
	"github.com/iliyamo/movie-grid/internal/service"
	"github.com/iliyamo/movie-grid/internal/tmdb"
)

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.IsProd() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.WithError(err).Fatal("migrate database")
		}
	}

	// Redis is optional: cache, rate limit and credits cache fall back to
	// pass-through without it.
	var (
		cache    redis.Cmdable
		scripter redis.Scripter
	)
	if rdb, err := config.NewRedisClient(); err != nil {
		logger.WithError(err).Warn("redis unavailable, caching and rate limiting disabled")
	} else {
		defer rdb.Close()
		cache, scripter = rdb, rdb
	}

	days, err := game.NewDayResolver(cfg.PuzzleTimezone, game.SystemClock{})
	if err != nil {
		logger.WithError(err).Fatal("puzzle timezone")
	}
	if cfg.TMDB.APIKey == "" {
		logger.Warn("TMDB_API_KEY not set, every guess will be rejected as upstream-unavailable")
	}
	catalog := tmdb.NewCatalog(
		tmdb.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.APIKey, cfg.TMDB.Timeout),
		cache,
		tmdb.Options{
			CreditsTTL:      cfg.TMDB.CreditsTTL,
			BreakerFailures: cfg.TMDB.BreakerFailures,
			BreakerReset:    cfg.TMDB.BreakerReset,
		},
		logger,
	)

	publisher := service.NewQueuePublisher(cfg.RabbitURL, logger)
	defer publisher.Close()
	go publisher.Run(ctx)

	store := repository.NewMySQLStore(db)
	svc := game.NewService(store, catalog, days, logger,
		game.WithPublisher(publisher),
		game.WithCommitTimeout(cfg.CommitTimeout),
	)

	consumer := &queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.GuessLogDir, Log: logger}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("guess consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), logger),
		cfg.JWTSecret)
	router.RegisterGame(e, router.GameDeps{
		Game:      handler.NewGameHandler(svc, logger),
		Search:    handler.NewSearchHandler(catalog, logger),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), cache),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), scripter, logger),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server exited")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}
