package completion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ollamaClient implements Service against the native Ollama API via
// langchaingo. Use it when the endpoint does not expose the OpenAI
// compatibility layer.
type ollamaClient struct {
	llm          *ollama.LLM
	model        string
	baseURL      string
	timeout      time.Duration
	httpClient   *http.Client
	limiter      *rate.Limiter
	retryBackoff time.Duration
	logger       *zap.Logger
}

// newOllamaClient creates a client for a native Ollama endpoint.
func newOllamaClient(cfg Config, logger *zap.Logger) (*ollamaClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &ollamaClient{
		llm:     llm,
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		retryBackoff: defaultRetryBackoff,
		logger:       logger,
	}, nil
}

// Complete generates text for the given request.
//
// A timeout is retried once with a fixed backoff before being surfaced.
// Connection failures and rejected requests are surfaced immediately.
func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: err}
	}

	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return "", classifyTransport(err)
	}

	text, err := c.generate(ctx, req)
	if err == nil {
		return text, nil
	}
	if !IsTimeout(err) {
		return "", err
	}

	c.logger.Warn("completion request timed out, retrying once",
		zap.Duration("backoff", c.retryBackoff))
	select {
	case <-time.After(c.retryBackoff):
	case <-ctx.Done():
		return "", classifyTransport(ctx.Err())
	}

	return c.generate(ctx, req)
}

// generate performs a single round trip through langchaingo. The library
// does not take a per-request deadline, so one is imposed via the context.
func (c *ollamaClient) generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, req.SystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, req.UserPrompt),
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("empty response from endpoint")}
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("empty completion from endpoint")}
	}

	return text, nil
}

// Ping checks that the endpoint answers its tag listing route.
func (c *ollamaClient) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClassifiedError{
			Kind: KindConnectionFailure,
			Err:  fmt.Errorf("endpoint answered ping with status %d", resp.StatusCode),
		}
	}
	return nil
}

// Ensure interfaces are implemented at compile time.
var _ Service = (*ollamaClient)(nil)
