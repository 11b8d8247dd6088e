// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/quorum/cliparse"
	"github.com/danielhkuo/quorum/db"
	"github.com/danielhkuo/quorum/events"
	"github.com/danielhkuo/quorum/limiter"
	"github.com/danielhkuo/quorum/router"
	"github.com/danielhkuo/quorum/service"
	"github.com/danielhkuo/quorum/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect and verify
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	directory := store.NewDirectoryStore(dbConn)
	if cfg.BootstrapAdmin != "" {
		if err := directory.EnsureAdmin(ctx, cfg.BootstrapAdmin); err != nil {
			slog.Error("admin bootstrap failed", "user_id", cfg.BootstrapAdmin, "error", err)
			os.Exit(1)
		}
		slog.Info("Bootstrap admin ready", "user_id", cfg.BootstrapAdmin, "role", store.DefaultAdminRole)
	}

	// Ballot events go to Kafka when brokers are configured
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("Publishing ballot events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	// Vote rate limiting needs Redis; without it requests are not limited
	var voteLimiter limiter.Limiter
	if cfg.RedisURL != "" {
		client, err := limiter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		voteLimiter = limiter.NewRedisLimiter(client, cfg.VoteRateLimit, cfg.VoteRateWindow)
		slog.Info("Vote rate limiting enabled", "limit", cfg.VoteRateLimit, "window", cfg.VoteRateWindow)
	}

	svc := service.New(store.NewBallotStore(dbConn), store.NewVoteStore(dbConn), directory, publisher)

	// Create router
	gin.SetMode(gin.ReleaseMode)
	handler := router.NewRouter(svc, cfg, voteLimiter)

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then drain in-flight requests
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
