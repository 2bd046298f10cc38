package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/config"
	"github.com/pintscoredd/zerodte/internal/engine"
	"github.com/pintscoredd/zerodte/internal/feed"
	"github.com/pintscoredd/zerodte/internal/journal"
	"github.com/pintscoredd/zerodte/internal/metrics"
	"github.com/pintscoredd/zerodte/internal/server"
	"github.com/pintscoredd/zerodte/internal/session"
	"github.com/pintscoredd/zerodte/internal/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Setup logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	// Load config
	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("failed to load server config", zap.Error(err))
		return 1
	}

	logger.Info("configuration loaded",
		zap.String("port", srvCfg.Port),
		zap.Strings("tickers", cfg.Tickers),
		zap.Bool("wsEnabled", srvCfg.WSEnabled),
		zap.Duration("wsStreamInterval", srvCfg.WSStreamInterval),
		zap.Duration("refreshInterval", srvCfg.RefreshInterval),
	)

	// Market session calendar
	sess, err := session.New(session.DefaultTimezone)
	if err != nil {
		logger.Error("failed to load market calendar", zap.Error(err))
		return 1
	}

	// Feed pipeline
	client := feed.NewClient(cfg.Feed, logger)
	svc := feed.NewService(client, sess, time.Duration(cfg.Feed.CacheTTLSec)*time.Second, logger)
	eng := engine.New(engine.Config{Band: cfg.Engine.Band, Scale: cfg.Engine.Scale}, logger)

	// Journal is read-only here; the daemon writes it.
	jnl, err := journal.New(cfg.Journal.Path, logger)
	if err != nil {
		logger.Error("failed to open journal", zap.Error(err))
		return 1
	}

	m := metrics.New()
	store := server.NewStore()
	refresher := server.NewRefresher(svc, eng, store, sess, cfg.Tickers, srvCfg.RefreshInterval, m, logger)
	srv := server.NewServer(store, refresher, jnl, sess, srvCfg, cfg.Tickers, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket components (optional)
	var hub *ws.Hub
	if srvCfg.WSEnabled {
		hub = ws.NewHub(m, logger)
		go hub.Run(ctx)

		streamer := ws.NewStreamer(hub, store, srvCfg.WSStreamInterval, logger)
		go streamer.Run(ctx)

		logger.Info("WebSocket enabled",
			zap.Duration("streamInterval", srvCfg.WSStreamInterval),
		)
	}

	// Background refresh loop
	go refresher.Run(ctx)

	// Create router
	router := server.NewRouter(srv, hub, m, logger)

	// Setup HTTP server
	httpServer := &http.Server{
		Addr:         ":" + srvCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Cancel context to stop WebSocket components
	cancel()

	// Graceful HTTP server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}
