package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash-exp"

// Request is a single structured generation call.
type Request struct {
	SystemPrompt    string
	UserPrompt      string
	ResponseSchema  *genai.Schema
	GoogleSearch    bool
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

type Usage struct {
	PromptTokens     int32 `json:"prompt_tokens"`
	CandidateTokens  int32 `json:"candidate_tokens"`
	TotalTokens      int32 `json:"total_tokens"`
	CachedTokenCount int32 `json:"cached_token_count"`
}

// Source is a web page the answer was grounded on.
type Source struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}

type Response struct {
	Text    string
	Usage   *Usage
	Model   string
	Sources []Source
}

// Generator produces structured model output. Client is the production
// implementation; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Model() string
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client calls the Gemini API, retrying rate limits and server errors.
type Client struct {
	generate generateFunc
	model    string
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

type Option func(*Client)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRetries sets the total number of attempts per call.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = uint(n)
		}
	}
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(gc.Models.GenerateContent, opts...), nil
}

func newClient(fn generateFunc, opts ...Option) *Client {
	c := &Client{
		generate: fn,
		model:    DefaultModel,
		attempts: 3,
		delay:    time.Second,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the resolved Gemini model name.
func (c *Client) Model() string {
	return c.model
}

// Generate runs a structured generation prompt and returns the raw text.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	contents := buildContents(req)
	cfg := buildConfig(req)

	result, err := retry.DoWithData(
		func() (*genai.GenerateContentResponse, error) {
			return c.generate(ctx, c.model, contents, cfg)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("gemini call failed, retrying",
				zap.Uint("attempt", n+1),
				zap.String("model", c.model),
				zap.Error(err))
		}),
	)
	if err != nil {
		return Response{}, fmt.Errorf("generate content: %w", err)
	}
	return Response{
		Text:    result.Text(),
		Usage:   extractUsage(result.UsageMetadata),
		Model:   c.model,
		Sources: extractSources(result),
	}, nil
}

// IsRetryable reports whether err is a rate limit or server-side API error.
func IsRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

func buildConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr(req.TopP)
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.ResponseSchema
	}
	if req.GoogleSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

func buildContents(req Request) []*genai.Content {
	return []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.UserPrompt}},
	}}
}

func extractUsage(meta *genai.GenerateContentResponseUsageMetadata) *Usage {
	if meta == nil {
		return nil
	}
	return &Usage{
		PromptTokens:     meta.PromptTokenCount,
		CandidateTokens:  meta.CandidatesTokenCount,
		TotalTokens:      meta.TotalTokenCount,
		CachedTokenCount: meta.CachedContentTokenCount,
	}
}

func extractSources(resp *genai.GenerateContentResponse) []Source {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(gm.GroundingChunks))
	var out []Source
	for _, ch := range gm.GroundingChunks {
		if ch == nil || ch.Web == nil || ch.Web.URI == "" {
			continue
		}
		if _, ok := seen[ch.Web.URI]; ok {
			continue
		}
		seen[ch.Web.URI] = struct{}{}
		out = append(out, Source{Title: ch.Web.Title, URI: ch.Web.URI})
	}
	return out
}
