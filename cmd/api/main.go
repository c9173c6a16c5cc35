package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicewatch/internal/archive"
	"voicewatch/internal/assistants"
	"voicewatch/internal/auth"
	"voicewatch/internal/bridge"
	"voicewatch/internal/config"
	"voicewatch/internal/httpapi"
	"voicewatch/internal/metrics"
	"voicewatch/internal/monitor"
	"voicewatch/internal/platform"
	"voicewatch/internal/realtime"
	"voicewatch/internal/recordings"
	"voicewatch/internal/reporting"
	"voicewatch/internal/webhook"
	"voicewatch/pkg/logger"
	"voicewatch/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	// Root context that cancels on shutdown.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	client, err := platform.NewClient(platform.Config{
		BaseURL: cfg.Platform.BaseURL,
		APIKey:  cfg.Platform.APIKey,
		Timeout: cfg.Platform.Timeout,
	})
	if err != nil {
		log.Error("platform client init failed", "err", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()
	met := metrics.New(reg)

	mon := monitor.New(client, monitor.Config{
		Interval:     cfg.Monitor.Interval,
		MaxAttempts:  cfg.Monitor.MaxAttempts,
		InitialDelay: cfg.Monitor.InitialDelay,
		GracePeriod:  cfg.Monitor.GracePeriod,
	}, log, met)
	defer mon.Stop()

	// Fan the notification feed out to its consumers.
	store := archive.NewPostgresStore(db)
	unsubArchiver := archive.NewArchiver(store, log).Attach(mon)
	defer unsubArchiver()
	unsubBridge := bridge.NewPublisher(rdb, log).Attach(mon)
	defer unsubBridge()

	hub := realtime.NewHub(log)
	defer hub.Close()
	unsubHub := hub.Attach(mon)
	defer unsubHub()

	h := httpapi.Handlers{
		Auth:       authManager,
		Monitor:    mon,
		Assistants: assistants.NewService(client, assistants.RedisCache{RDB: rdb}, log),
		Platform:   client,
		Recordings: recordings.NewService(client, cfg.Recordings.Dir, log),
		Reports:    reporting.NewService(store),
	}
	wh := webhook.Handler{
		Secret:  cfg.Webhook.Secret,
		Monitor: mon,
		Replay:  webhook.RedisReplayGuard{RDB: rdb},
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h, wh, hub, reg, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
