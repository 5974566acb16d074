package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ignite/listflow/internal/api"
	"github.com/ignite/listflow/internal/bounce"
	"github.com/ignite/listflow/internal/config"
	"github.com/ignite/listflow/internal/notice"
	"github.com/ignite/listflow/internal/pending"
	"github.com/ignite/listflow/internal/pipeline"
	"github.com/ignite/listflow/internal/pkg/distlock"
	"github.com/ignite/listflow/internal/pkg/logger"
	"github.com/ignite/listflow/internal/queue"
	"github.com/ignite/listflow/internal/repository/postgres"
	"github.com/ignite/listflow/internal/worker"
)

// BouncePipeline is the registry name the bounce runner processes
// delivery failure reports under.
const BouncePipeline = "default-bounce-pipeline"

func main() {
	configPath := "config/config.yaml"
	if v := os.Getenv("LISTFLOW_CONFIG"); v != "" {
		configPath = v
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.INFO)
	if os.Getenv("LOG_LEVEL") == "debug" {
		log = logger.New(os.Stdout, logger.DEBUG)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Repositories
	pendingRepo := postgres.NewPendingRepo(db)
	bounceRepo := postgres.NewBounceRepo(db)
	membership := postgres.NewMembershipRepo(db, log)
	lists := postgres.NewListRepo(db)

	// Queues and notice plumbing
	queues := queue.NewSwitchboard(rdb)
	sender := notice.NewQueueSender(queues, pipeline.QueueVirgin, func() string {
		return fmt.Sprintf("<%s@listflow>", uuid.NewString())
	})
	composer := notice.NewComposer(notice.URLs{
		ConfirmBase: cfg.Notices.ConfirmBaseURL,
		OptionsBase: cfg.Notices.OptionsBaseURL,
	}, cfg.Notices.SiteOwner, sender)

	// Core services
	pend := pending.NewService(pendingRepo, pending.Config{
		DefaultLifetime: cfg.Pending.Lifetime(),
		TokenAttempts:   cfg.Pending.TokenAttempts,
	}, log)
	tracker := bounce.NewTracker(bounce.Config{
		ScoreThreshold:   cfg.Bounce.ScoreThreshold,
		StaleAfter:       cfg.Bounce.StaleAfter(),
		DisabledWarnings: cfg.Bounce.DisabledWarnings,
		WarningInterval:  cfg.Bounce.WarningInterval(),
		TokenLifetime:    cfg.Pending.Lifetime(),
	}, bounceRepo, membership, pend, composer, log)

	registry := pipeline.DefaultRegistry(queues, composer)
	registry.Register(pipeline.NewPipeline(BouncePipeline,
		"Disposition of delivery failure reports",
		bounce.DetectBounces{Tracker: tracker}))
	engine := pipeline.NewEngine(registry, queues, log)

	lockFor := func(listID string) distlock.DistLock {
		return distlock.ForList(rdb, db, listID, cfg.Worker.ListLockTTL())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	start := func(name string, run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
		log.Info("started", "worker", name)
	}

	runner := worker.NewRunner(queues, engine, lists, lockFor, cfg.Worker.PopTimeout(), log)
	start("pipeline-runner", runner.Start)
	start("pending-evictor", worker.NewEvictor(pend, cfg.Pending.EvictInterval(), log).Start)
	start("notice-sweeper", worker.NewSweeper(lists, membership, tracker, cfg.Notices.SweepInterval(), log).Start)

	// HTTP surface: health, confirmation links, operator views
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port),
		Handler:           api.NewServer(tracker, pend, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	wg.Wait()
	log.Info("stopped")
}
