package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"aqua-vision/config"
	"aqua-vision/internal/api/telegram"
	"aqua-vision/internal/container"
	"aqua-vision/internal/infrastructure/storage"
	"aqua-vision/internal/infrastructure/vision"
	"aqua-vision/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	analyzer, err := vision.NewAnalyzer(cfg.Analysis)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	// Хранилище состояний диалога для бота
	userRepo := storage.NewMemoryUserRepository()

	appContainer, err := container.New(cfg, userRepo, analyzer)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           appContainer.HTTPHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address":      cfg.HTTPAddr,
			"roi_fraction": cfg.Analysis.ROIFraction,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.AnalysisService)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		go func() {
			logger.Info("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				logger.WithError(err).Error("Bot error")
			}
		}()
	} else {
		logger.Warn("TELEGRAM_TOKEN is empty, bot is disabled")
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
