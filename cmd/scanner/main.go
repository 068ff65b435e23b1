package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"MomentumScanner/internal/collector"
	"MomentumScanner/internal/config"
	"MomentumScanner/internal/logger"
	"MomentumScanner/internal/metrics"
	"MomentumScanner/internal/notifier"
	"MomentumScanner/internal/recorder"
	"MomentumScanner/internal/scheduler"
	"MomentumScanner/internal/session"
)

func main() {
	// Bootstrap logger so config errors are visible; replaced once config is loaded.
	if err := logger.Init("info", os.Getenv("ENVIRONMENT"), logger.FileConfig{}); err != nil {
		panic(err)
	}

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("load .env", zap.Error(err))
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Environment, logger.FileConfig{Path: cfg.Log.File}); err != nil {
		logger.Fatal("init logger", zap.Error(err))
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	logger.Info("MomentumScanner starting",
		zap.String("endpoint", cfg.Scanner.Endpoint),
		zap.Strings("profiles", cfg.Scanner.Profiles),
		zap.Duration("interval", cfg.Refresh.Interval),
		zap.Duration("timeout", cfg.Scanner.Timeout),
	)

	// Init fetcher
	fetcher := collector.NewTradingViewFetcher(cfg.Scanner.Endpoint, cfg.Scanner.SessionCookie, cfg.Proxy, cfg.Scanner.Timeout)
	logger.Info("data source ready", zap.String("fetcher", fetcher.Name()))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init session; an invalid profile stops startup here.
	sess, err := session.New(
		session.Config{Interval: cfg.Refresh.Interval},
		cfg.ScanProfiles(),
		collector.NewCollector(fetcher),
		rec,
	)
	if err != nil {
		logger.Fatal("init session", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics endpoint
	var metricsSrv *http.Server
	if cfg.Metrics.Listen != "" {
		metricsSrv = metrics.NewServer(cfg.Metrics.Listen)
		go func() {
			logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Listen))
			if err := metricsSrv.ListenAndServe(); err != nil && !metrics.IsServerClosed(err) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sess)
	sched.RowLimit = cfg.Telegram.RowLimit
	if j, ok := rec.(recorder.Summarizer); ok {
		sched.Journal = j
	}
	if err := sched.Register(cfg.Refresh.Tick); err != nil {
		logger.Fatal("register refresh tick", zap.Error(err))
	}

	if cfg.RunOnStart {
		logger.Info("RUN_ON_START enabled, running first cycle now")
		sched.RunNow()
	}
	sched.Start()

	// Telegram presenter
	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	} else {
		logger.Info("telegram not configured, presenter disabled")
	}

	logger.Info("MomentumScanner is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	if metricsSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
		done()
	}
	logger.Info("MomentumScanner stopped")
}
