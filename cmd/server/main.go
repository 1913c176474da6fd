package main

import (
	"context"
	"errors"
	"log"

	"clues/internal/config"
	"clues/internal/extract"
	"clues/internal/logging"
	"clues/internal/portals"
	"clues/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	envErr := config.Load()

	logger, err := logging.New(config.Debug())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env loaded", zap.Error(envErr))
	}
	if config.APIKey() == "" {
		logger.Warn("CLUES_API_KEY not set; gated routes will reject all requests")
	}
	if !config.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg, err := portals.Load(config.CountyPortalsFile())
	if err != nil {
		logger.Fatal("load county portals", zap.Error(err))
	}

	ex, err := extract.FromConfig(context.Background(), reg, logger)
	switch {
	case errors.Is(err, extract.ErrGeminiNotConfigured):
		logger.Warn("GEMINI_API_KEY not set; extraction disabled")
	case err != nil:
		logger.Fatal("extractor", zap.Error(err))
	}

	r := server.New(server.Deps{
		Extractor: ex,
		Portals:   reg,
		RunsDir:   config.RunsDir(),
		RunsMax:   config.RunsMax(),
		Logger:    logger,
	})

	addr := config.Addr()
	logger.Info("listening", zap.String("addr", addr), zap.String("model", config.GeminiModel()))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
