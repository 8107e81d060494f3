package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tunestream/musicbot/internal/app"
	"tunestream/musicbot/internal/bot"
	"tunestream/musicbot/internal/fetch"
	"tunestream/musicbot/internal/metrics"
	"tunestream/musicbot/internal/providers/soundcloud"
	"tunestream/musicbot/internal/ratelimit"
	"tunestream/musicbot/internal/search"
	"tunestream/musicbot/internal/session"
	"tunestream/musicbot/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cfg.BotToken == "" {
		logger.Error("BOT_TOKEN is not set")
		os.Exit(1)
	}

	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "musicbot")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "musicbot"),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Int("maxFileSizeMB", cfg.MaxFileSizeMB),
		slog.Duration("downloadTimeout", cfg.DownloadTimeout),
		slog.Duration("searchTimeout", cfg.SearchTimeout),
		slog.Int("requestsPerMinute", cfg.RequestsPerMinute),
		slog.Duration("cacheTTL", cfg.CacheTTL),
		slog.Int("resultLimit", cfg.ResultLimit),
		slog.String("metricsAddr", cfg.MetricsAddr),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := soundcloud.Install(rootCtx); err != nil {
		logger.Error("yt-dlp unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}
	provider := soundcloud.New()

	searchService := search.NewService(provider, cfg.SearchTimeout,
		search.WithCacheTTL(cfg.CacheTTL),
		search.WithConcurrency(int64(cfg.SearchConcurrency)),
	)
	fetcher := fetch.New(provider,
		fetch.WithTimeout(cfg.DownloadTimeout),
		fetch.WithMaxBytes(cfg.MaxFileBytes()),
		fetch.WithConcurrency(int64(cfg.FetchConcurrency)),
	)
	limiter := ratelimit.New(cfg.RequestsPerMinute, time.Minute)
	sessions := session.NewStore(cfg.SessionTTL())
	sessions.StartSweeper(rootCtx, cfg.CacheTTL)

	telegram, err := bot.NewTelegram(bot.TelegramConfig{
		Token: cfg.BotToken,
		Debug: cfg.TelegramDebug,
	})
	if err != nil {
		logger.Error("telegram init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	telegram.SetHandler(bot.NewHandler(telegram, searchService, fetcher, limiter, sessions, cfg.ResultLimit))

	metricsServer := startMetricsServer(cfg.MetricsAddr, logger)

	// A replaced instance may still hold the long-poll slot for a moment;
	// the platform answers 409 until it lets go.
	err = app.RetryWithBackoff(rootCtx, app.DefaultRetryConfig(), func() error {
		return telegram.Start(rootCtx)
	})
	if err != nil {
		logger.Error("telegram start failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("music bot started")

	<-rootCtx.Done()
	logger.Info("shutdown signal received")

	telegram.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown error", slog.String("error", err.Error()))
		}
	}
	logger.Info("music bot stopped")
}

func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server error", slog.String("error", err.Error()))
		}
	}()
	logger.Info("metrics server started", slog.String("addr", addr))
	return server
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
