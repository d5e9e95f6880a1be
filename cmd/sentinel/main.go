package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetworks/asset-sentinel/internal/alerting"
	"github.com/fleetworks/asset-sentinel/internal/api"
	"github.com/fleetworks/asset-sentinel/internal/broadcast"
	"github.com/fleetworks/asset-sentinel/internal/cache"
	"github.com/fleetworks/asset-sentinel/internal/config"
	"github.com/fleetworks/asset-sentinel/internal/metrics"
	"github.com/fleetworks/asset-sentinel/internal/notify"
	"github.com/fleetworks/asset-sentinel/internal/patterns"
	"github.com/fleetworks/asset-sentinel/internal/repo"
	"github.com/fleetworks/asset-sentinel/internal/scheduler"
	"github.com/fleetworks/asset-sentinel/internal/services"
	"github.com/fleetworks/asset-sentinel/internal/settings"
	"github.com/fleetworks/asset-sentinel/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting asset-sentinel", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewRedisProvider(cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			PoolSize:     cfg.Cache.PoolSize,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
		})
		if err != nil {
			logger.Warn("redis cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	settingsStore := settings.NewStore(cacheProvider)

	storeClient := repo.NewStoreClient(
		cfg.Store.BaseURL,
		cfg.Store.AssetsPath,
		cfg.Store.EventsPath,
		cfg.Store.Timeout,
		cacheProvider,
		cfg.Store.EventsTTL,
	)

	hub := broadcast.NewHub(logger)
	go hub.Run()

	var notifiers []notify.Notifier
	if cfg.Notify.SMTPHost != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(notify.EmailConfig{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			Username: cfg.Notify.SMTPUsername,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.SMTPFrom,
		}))
	}
	notifiers = append(notifiers, notify.NewWebhookNotifier(notify.WebhookConfig{
		URL:     cfg.Notify.WebhookURL,
		Token:   cfg.Notify.WebhookToken,
		Timeout: cfg.Notify.WebhookTimeout,
	}))
	dispatcher := notify.NewDispatcher(logger, settingsStore, notifiers...)

	manager := alerting.NewManager(logger, alerting.ManagerConfig{
		Cooldown:         cfg.Alerting.Cooldown,
		HistoryRetention: cfg.Alerting.HistoryRetention,
	}, utils.SystemClock{}, hub, dispatcher, settingsStore)

	monitor := alerting.NewMonitor(logger, storeClient, manager, alerting.MonitorConfig{
		AvailabilityInterval: cfg.Monitor.AvailabilityInterval,
		DowntimeInterval:     cfg.Monitor.DowntimeInterval,
		ReliabilityInterval:  cfg.Monitor.ReliabilityInterval,
		CleanupInterval:      cfg.Monitor.CleanupInterval,
		WindowDays:           cfg.Monitor.WindowDays,
	})

	sched := scheduler.New(logger)
	if err := monitor.Register(sched); err != nil {
		logger.Error("failed to register sweeps", slog.Any("error", err))
		os.Exit(1)
	}

	insightService := services.NewInsightService(logger, storeClient, cfg.Monitor.WindowDays, utils.SystemClock{})
	miner := patterns.NewMiner(logger, patterns.NewCacheStore(cacheProvider))

	handlers := api.NewHandlers(logger, manager, insightService, settingsStore, miner, hub)
	server, err := api.NewServer(cfg.Server, handlers.Router())
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)
	hub.Close()

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("asset-sentinel stopped")
}
