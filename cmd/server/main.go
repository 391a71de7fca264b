package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cricket-live-scoring/internal/cache"
	"github.com/iliyamo/cricket-live-scoring/internal/config"
	"github.com/iliyamo/cricket-live-scoring/internal/database"
	"github.com/iliyamo/cricket-live-scoring/internal/handler"
	"github.com/iliyamo/cricket-live-scoring/internal/hub"
	"github.com/iliyamo/cricket-live-scoring/internal/middleware"
	"github.com/iliyamo/cricket-live-scoring/internal/publisher"
	"github.com/iliyamo/cricket-live-scoring/internal/queue"
	"github.com/iliyamo/cricket-live-scoring/internal/repository"
	"github.com/iliyamo/cricket-live-scoring/internal/router"
	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
	"github.com/iliyamo/cricket-live-scoring/internal/service"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()
	liveCfg := config.LoadLiveFeedConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter and response cache
	// pass through and no summaries or stream entries are written.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis: unavailable, running without cache and live summaries")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	fixtures := repository.NewFixtureRepo(db)

	liveHub := hub.New()
	go liveHub.Run(ctx)

	notifier := service.NewLiveNotifier(1024)
	notifier.Hub = liveHub
	var summaries handler.SummaryReader
	if liveCfg.Enabled && rdb != nil {
		writer := cache.NewRedisWriter(rdb, liveCfg.TTLLive, liveCfg.TTLFinal)
		notifier.Summaries = writer
		notifier.Stream = publisher.NewStreamPublisher(rdb, liveCfg.StreamKey, liveCfg.StreamMaxLen)
		summaries = writer
	}
	if liveCfg.Enabled && liveCfg.AMQPURL != "" {
		events := service.NewQueuePublisher(liveCfg.AMQPURL, liveCfg.Queue)
		defer events.Close()
		notifier.Events = events

		go func() {
			err := queue.StartScoringConsumer(ctx, queue.ConsumerConfig{
				URL:    liveCfg.AMQPURL,
				Queue:  liveCfg.Queue,
				LogDir: liveCfg.LogDir,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("scoring-consumer: stopped: %v", err)
			}
		}()
	}
	notifierDone := make(chan struct{})
	go func() {
		defer close(notifierDone)
		notifier.Run(ctx)
	}()

	scorer := scoring.NewService(scoring.NewRegistry(), scoring.WithNotifier(notifier))

	go purgeTokens(ctx, tokens)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	checks := map[string]handler.Check{"mysql": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	router.RegisterRoutes(e, &handler.ReadyHandler{Checks: checks, Metrics: liveHub.Metrics})
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterFixtures(e, handler.NewFixtureHandler(fixtures),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterMatches(e, handler.NewMatchHandler(scorer, fixtures.Lookup, summaries), cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	if liveCfg.WebSocket {
		router.RegisterLive(e, &handler.LiveHandler{Hub: liveHub, Ctx: ctx})
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	select {
	case <-notifierDone:
	case <-shutdownCtx.Done():
		log.Printf("livefeed: pending updates not flushed")
	}
}

// purgeTokens deletes expired refresh tokens once an hour.
func purgeTokens(ctx context.Context, tokens *repository.TokenRepo) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := tokens.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("tokens: purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("tokens: purged %d expired refresh tokens", n)
			}
		}
	}
}
