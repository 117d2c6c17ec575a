package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	handlers "github.com/katkatprog/sleepApp-sub000/internal/handler"
	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/pkg/cache"
	"github.com/katkatprog/sleepApp-sub000/pkg/config"
	"github.com/katkatprog/sleepApp-sub000/pkg/logger"
	"github.com/katkatprog/sleepApp-sub000/pkg/middleware"
	"github.com/katkatprog/sleepApp-sub000/pkg/storage"
	"github.com/katkatprog/sleepApp-sub000/pkg/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config load failed: %v", err)
		return 1
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Printf("invalid configuration: %v", err)
		return 1
	}

	zl := logger.New(cfg.Log)
	defer zl.Sync()

	db, err := util.ConnectDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		zl.Error("database connection failed", zap.Error(err))
		return 1
	}
	defer util.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		zl.Error("migration failed", zap.Error(err))
		return 1
	}

	cch, err := cache.NewCache(cfg.Cache)
	if err != nil {
		zl.Error("cache setup failed", zap.Error(err))
		return 1
	}
	defer cch.Close()

	var store storage.Store
	if cfg.Minio.Endpoint != "" {
		store, err = storage.NewMinioStore(cfg.Minio)
		if err != nil {
			zl.Error("object store setup failed", zap.Error(err))
			return 1
		}
	}

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), handlers.RequestLogger(zl))

	h := handlers.New(db, cfg, cch, store, zl)
	h.Register(engine, middleware.NewRateLimiter(cfg.RateLimit, nil))

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	go func() {
		zl.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
		return 1
	}
	return 0
}
