package extract

import (
	"context"
	"errors"
	"fmt"

	"clues/internal/config"
	"clues/internal/gemini"
	"clues/internal/portals"

	"go.uber.org/zap"
)

// ErrGeminiNotConfigured is returned by FromConfig when GEMINI_API_KEY is unset.
var ErrGeminiNotConfigured = errors.New("GEMINI_API_KEY not set")

// FromConfig wires an Extractor from environment configuration.
func FromConfig(ctx context.Context, reg *portals.Registry, logger *zap.Logger) (*Extractor, error) {
	key := config.GeminiAPIKey()
	if key == "" {
		return nil, ErrGeminiNotConfigured
	}
	client, err := gemini.NewClient(ctx, key,
		gemini.WithModel(config.GeminiModel()),
		gemini.WithRetries(config.GeminiRetries()),
		gemini.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	opts := Options{
		Portals:     reg,
		Timeout:     config.BatchTimeout(),
		Concurrency: config.MaxConcurrency(),
		Logger:      logger,
	}
	if ttl, ok := config.CacheTTL(); ok {
		opts.CacheDir = config.RunsDir()
		opts.CacheTTL = ttl
	}
	return NewExtractor(client, opts), nil
}
