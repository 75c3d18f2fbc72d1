package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/cccd-inspector-go/internal/config"
	"github.com/anime-shed/cccd-inspector-go/internal/container"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Configure(cfg.LogLevel, os.Stdout)
	if logger.ParseLevel(cfg.LogLevel) != logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	c, err := container.NewContainer(startCtx, cfg)
	cancelStart()
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}

	// Pipeline requests may run longer than the default request timeout
	writeTimeout := cfg.RequestTimeout
	if cfg.PipelineTimeout > writeTimeout {
		writeTimeout = cfg.PipelineTimeout
	}
	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      c.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: writeTimeout + 5*time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address":      cfg.ServerAddress(),
			"timeout":      cfg.RequestTimeout,
			"store_driver": cfg.Store.Driver,
			"cache_driver": cfg.Cache.Driver,
			"azure":        cfg.AzureEnabled(),
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := c.Close(); err != nil {
		logger.WithError(err).Error("Failed to release resources")
	}

	logger.Info("Server exited")
}
