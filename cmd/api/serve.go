package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"taskmanager/internal/handler"
	"taskmanager/internal/httpserver"
	"taskmanager/internal/repository"
	"taskmanager/internal/service/auth"
	"taskmanager/internal/service/task"
	"taskmanager/pkg/db"
	"taskmanager/pkg/util"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API server",
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting taskmanager...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("addr", cfg.Server.Addr()),
	)

	// DB
	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		return fmt.Errorf("failed to init DB: %w", err)
	}
	defer pool.Close()
	log.Info("Database connection established successfully")

	ttl, err := cfg.JWT.TTL()
	if err != nil {
		return err
	}
	tokens := util.NewTokenService(cfg.JWT.Secret, ttl)

	// Repositories
	userRepo := repository.NewUserRepository(pool, log)
	taskRepo := repository.NewTaskRepository(pool, log)

	// Services
	authService, err := auth.NewService(userRepo, tokens, log)
	if err != nil {
		return err
	}
	taskService := task.NewService(taskRepo, log)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpserver.NewRouter(httpserver.Deps{
		AuthHandler: handler.NewAuthHandler(authService, log),
		TaskHandler: handler.NewTaskHandler(taskService, log),
		Tokens:      tokens,
		DB:          pool,
		Logger:      log,
		CORS:        cfg.CORS,
		RateLimit:   cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Engine,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// 优雅退出
	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	log.Info("taskmanager shutdown complete")
	return nil
}
