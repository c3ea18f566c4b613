package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guileen/remotetable/catalog"
	"github.com/guileen/remotetable/config"
	"github.com/guileen/remotetable/connection"
	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/protocol/api"
)

func main() {
	startTime := time.Now()
	l, flush := logger.NewLoggerWithSeq(logger.LoadConfig())
	logger.SetLogger(l)
	defer flush()

	cfg, err := config.LoadRemoteConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger.Info("Starting remote table server",
		"db_type", cfg.DatabaseType.String(), "addr", cfg.ServerAddr, "tables_file", cfg.TablesFile)

	defs, err := config.LoadTables(cfg.TablesFile)
	if err != nil {
		log.Fatalf("failed to load tables: %v", err)
	}

	ctx := context.Background()
	opts := cfg.ConnectionOptions()
	conn, err := connection.Open(ctx, opts)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", cfg.DatabaseType, err)
	}

	cat := catalog.New()
	cat.Own(conn)
	if err := cat.RegisterAll(ctx, defs, opts, conn); err != nil {
		logger.Warn("Some tables failed to register", logger.ErrorField(err))
	}
	logger.Info("Catalog ready", "tables", len(cat.Names()))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(api.RequestContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.Metrics)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/debug/pprof/", pprof.Index)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	r.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	api.NewRESTHandler(cat).RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.ServerAddr,
			"init_duration", time.Since(startTime).String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", logger.ErrorField(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", logger.ErrorField(err))
	}
	if err := cat.Close(); err != nil {
		logger.Error("Failed to close connections", logger.ErrorField(err))
	}
	logger.Info("Server stopped")
}
