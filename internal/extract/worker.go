package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"clues/internal/config"
	"clues/internal/gemini"
	"clues/internal/portals"
	"clues/internal/schema"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBatchTimeout = 90 * time.Second

// ErrNoBatchSucceeded is returned with a report when every batch failed.
var ErrNoBatchSucceeded = errors.New("every extraction batch failed")

// ErrInvalidInput marks a missing address or county.
var ErrInvalidInput = errors.New("invalid extraction input")

type Options struct {
	Portals     *portals.Registry
	CacheDir    string // empty disables the batch cache
	CacheTTL    time.Duration
	Timeout     time.Duration
	Concurrency int
	Logger      *zap.Logger
}

// Extractor runs the specialist batches for one property.
type Extractor struct {
	gen         gemini.Generator
	portals     *portals.Registry
	cacheDir    string
	cacheTTL    time.Duration
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

func NewExtractor(gen gemini.Generator, opts Options) *Extractor {
	e := &Extractor{
		gen:         gen,
		portals:     opts.Portals,
		cacheDir:    opts.CacheDir,
		cacheTTL:    opts.CacheTTL,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		now:         time.Now,
	}
	if e.portals == nil {
		e.portals = portals.Default()
	}
	if e.timeout <= 0 {
		e.timeout = defaultBatchTimeout
	}
	if e.concurrency <= 0 {
		e.concurrency = len(batches)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Run extracts every catalog field for address. Batches run concurrently and
// a failing batch never stops the others; its fields are simply absent from
// the report. When no batch succeeds the partial report is returned together
// with ErrNoBatchSucceeded.
func (e *Extractor) Run(ctx context.Context, address, county string) (*Report, error) {
	address = strings.TrimSpace(address)
	county = CountyName(county)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if county == "" {
		return nil, fmt.Errorf("%w: county is required", ErrInvalidInput)
	}
	if len(address) > config.MaxAddressLength {
		return nil, fmt.Errorf("%w: address exceeds %d characters", ErrInvalidInput, config.MaxAddressLength)
	}

	full := FullAddress(address, county)
	log := e.logger.With(zap.String("address", full))
	log.Info("starting batch extraction", zap.Bool("known_county", e.portals.Supported(county)))

	outcomes := make([]BatchOutcome, len(batches))
	results := make([]schema.Values, len(batches))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i, b := range batches {
		g.Go(func() error {
			results[i], outcomes[i] = e.runBatch(ctx, b, full, county, log)
			return nil
		})
	}
	_ = g.Wait()

	merged := make(schema.Values)
	succeeded := 0
	for i, out := range outcomes {
		if !out.OK {
			continue
		}
		succeeded++
		maps.Copy(merged, results[i])
	}

	extracted := nonNullKeys(merged)
	log.Info("batch extraction finished",
		zap.Int("extracted", len(extracted)),
		zap.Int("total", len(catalog)),
		zap.Int("batches_ok", succeeded),
		zap.Strings("fields", extracted))

	report := &Report{
		Address:   full,
		Fields:    MapFields(merged, e.now()),
		Batches:   outcomes,
		Extracted: len(extracted),
		Total:     len(catalog),
	}
	if succeeded == 0 {
		return report, ErrNoBatchSucceeded
	}
	return report, nil
}

func (e *Extractor) runBatch(ctx context.Context, b Batch, fullAddress, county string, log *zap.Logger) (schema.Values, BatchOutcome) {
	log = log.With(zap.String("batch", b.Name))
	start := e.now()
	out := BatchOutcome{Batch: b.ID, Name: b.Name}

	vals, err := e.extractBatch(ctx, b, fullAddress, county, &out, log)
	out.DurationMS = e.now().Sub(start).Milliseconds()
	if err != nil {
		out.Error = err.Error()
		log.Error("batch failed", zap.Int64("duration_ms", out.DurationMS), zap.Error(err))
		return nil, out
	}
	out.OK = true
	out.NonNull = len(nonNullKeys(vals))
	log.Info("batch completed",
		zap.Int64("duration_ms", out.DurationMS),
		zap.Int("non_null", out.NonNull),
		zap.Bool("cached", out.Cached))
	return vals, out
}

func (e *Extractor) extractBatch(ctx context.Context, b Batch, fullAddress, county string, out *BatchOutcome, log *zap.Logger) (schema.Values, error) {
	key := cacheKey(fullAddress, b.ID, e.gen.Model())
	if cached := e.loadCached(key, b, log); cached != nil {
		out.Cached = true
		out.Sources = cached.Sources
		out.Usage = cached.Usage
		return cached.Values, nil
	}

	hint := b.SearchHint(fullAddress, county)
	log.Debug("search hint", zap.String("hint", hint))

	ctx, cancel := withBatchTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.gen.Generate(ctx, gemini.Request{
		SystemPrompt:    systemPrompt,
		UserPrompt:      buildUserPrompt(hint, b.Instructions(e.portals, county)),
		ResponseSchema:  b.Schema.Gemini(),
		GoogleSearch:    true,
		Temperature:     0,
		TopP:            0.95,
		MaxOutputTokens: config.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("raw response", zap.String("text", resp.Text))
	out.Sources = resp.Sources
	out.Usage = resp.Usage

	raw, err := decodeObject(resp.Text)
	if err != nil {
		return nil, err
	}

	res := b.Schema.SafeParse(raw)
	if !res.Success {
		// Issues are reported, not enforced.
		out.Issues = res.Issues
		log.Warn("validation warnings", zap.Any("issues", res.Issues))
		return declaredOnly(b.Schema, raw), nil
	}

	if e.cacheDir != "" {
		if err := saveCache(e.cacheDir, key, CachedBatch{
			Model:         resp.Model,
			PromptVersion: promptVersion,
			Batch:         b.ID,
			Address:       fullAddress,
			Values:        res.Data,
			RawText:       resp.Text,
			Usage:         resp.Usage,
			Sources:       resp.Sources,
			CachedAt:      e.now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Warn("cache save failed", zap.Error(err))
		}
	}
	return res.Data, nil
}

func (e *Extractor) loadCached(key string, b Batch, log *zap.Logger) *CachedBatch {
	if e.cacheDir == "" {
		return nil
	}
	cached, err := loadCache(e.cacheDir, key)
	if err != nil {
		return nil
	}
	if cached.expired(e.cacheTTL, e.now()) {
		return nil
	}
	res := b.Schema.SafeParse(map[string]any(cached.Values))
	if !res.Success {
		log.Debug("cached batch no longer validates", zap.Any("issues", res.Issues))
		return nil
	}
	cached.Values = res.Data
	return cached
}

func withBatchTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// decodeObject parses a model response that must be a single JSON object.
// Markdown code fences are tolerated.
func decodeObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("parse response: expected JSON object")
	}
	return obj, nil
}

// declaredOnly drops keys the schema does not declare.
func declaredOnly(o *schema.Object, raw map[string]any) schema.Values {
	out := make(schema.Values, len(raw))
	for _, k := range o.Keys() {
		if v, ok := raw[k]; ok {
			out[k] = v
		}
	}
	return out
}
