package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// openAIClient implements Service against any OpenAI-compatible chat
// completions endpoint. Ollama exposes one at /v1, as do LM Studio and
// llama.cpp's server, so this is the default provider.
type openAIClient struct {
	model        string
	apiKey       string `json:"-"` // Never serialize API keys
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	retryBackoff time.Duration
	logger       *zap.Logger
}

// newOpenAIClient creates a client for an OpenAI-compatible endpoint.
func newOpenAIClient(cfg Config, logger *zap.Logger) (*openAIClient, error) {
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
	// The API path is appended per request, so strip it if the configured
	// URL already carries it.
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &openAIClient{
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		retryBackoff: defaultRetryBackoff,
		logger:       logger,
	}, nil
}

// openAIRequest represents the request format for the chat completions API.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

// openAIMessage represents a message in the conversation.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIResponse represents the response from the chat completions API.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// openAIError represents an error response from the endpoint.
type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Param   string `json:"param"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete generates text for the given request.
//
// A timeout is retried once with a fixed backoff before being surfaced.
// Connection failures and rejected requests are surfaced immediately.
func (o *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: err}
	}

	// Wait for rate limiter
	if err := o.limiter.Wait(ctx); err != nil {
		return "", classifyTransport(err)
	}

	text, err := o.doRequest(ctx, req)
	if err == nil {
		return text, nil
	}
	if !IsTimeout(err) {
		return "", err
	}

	o.logger.Warn("completion request timed out, retrying once",
		zap.Duration("backoff", o.retryBackoff))
	select {
	case <-time.After(o.retryBackoff):
	case <-ctx.Done():
		return "", classifyTransport(ctx.Err())
	}

	return o.doRequest(ctx, req)
}

// doRequest performs the actual HTTP request to the endpoint.
func (o *openAIClient) doRequest(ctx context.Context, req Request) (string, error) {
	apiReq := openAIRequest{
		Model:       o.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openAIMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	}

	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(err)
	}

	// Gateway statuses mean the inference backend is unreachable even
	// though something answered the socket.
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "", &ClassifiedError{
			Kind: KindConnectionFailure,
			Err:  fmt.Errorf("endpoint unavailable (%d): %s", resp.StatusCode, string(body)),
		}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp openAIError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", &ClassifiedError{
				Kind: KindBadRequest,
				Err:  fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message),
			}
		}
		return "", &ClassifiedError{
			Kind: KindBadRequest,
			Err:  fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body)),
		}
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if len(apiResp.Choices) == 0 {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("empty response from endpoint")}
	}

	text := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if text == "" {
		return "", &ClassifiedError{Kind: KindBadRequest, Err: fmt.Errorf("empty completion from endpoint")}
	}

	return text, nil
}

// Ping checks that the endpoint answers its model listing route.
func (o *openAIClient) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
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
var _ Service = (*openAIClient)(nil)
