// Package deepseek implements inference.Client on top of the DeepSeek
// chat completions API, which is wire compatible with OpenAI's.
package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/humanizer/internal/inference"
)

const (
	DefaultBaseURL     = "https://api.deepseek.com/v1"
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = 0.75
	DefaultMaxTokens   = 4000
	DefaultTimeout     = 120 * time.Second

	providerName = "deepseek"
)

// Config holds the fixed request settings of the client.
type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	RetryAttempts uint
}

type Client struct {
	httpClient       *resty.Client
	apiKey           string
	model            string
	temperature      float64
	maxTokens        int
	maxRetryAttempts uint
	retryDelay       time.Duration
}

var _ inference.Client = (*Client)(nil)

// NewClient creates a client. An empty API key is accepted here and reported
// by Rewrite, so a service can start before the credential is provisioned.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(cfg.Timeout)

	return &Client{
		httpClient:       client,
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		temperature:      cfg.Temperature,
		maxTokens:        cfg.MaxTokens,
		maxRetryAttempts: cfg.RetryAttempts,
		retryDelay:       time.Second,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// isRetryableError reports whether a failed call may succeed when repeated.
// Only rate limiting, server errors and transport failures qualify.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var providerErr *inference.ProviderError
	if !errors.As(err, &providerErr) {
		return false
	}
	switch {
	case providerErr.StatusCode == 0:
		return true
	case providerErr.StatusCode == http.StatusTooManyRequests:
		return true
	case providerErr.StatusCode >= http.StatusInternalServerError:
		return true
	}
	return false
}

// Rewrite implements the inference.Client interface
func (client *Client) Rewrite(
	ctx context.Context,
	params inference.RewriteRequest,
) (inference.RewriteResponse, error) {
	if client.apiKey == "" {
		return inference.RewriteResponse{}, inference.ErrMissingCredential
	}

	var result inference.RewriteResponse
	if err := retry.Do(
		func() error {
			response, err := client.rewrite(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.Delay(client.retryDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Warn("retrying DeepSeek API call",
				"attempt", n+1,
				"error", err,
			)
		}),
	); err != nil {
		return inference.RewriteResponse{}, err
	}
	return result, nil
}

func (client *Client) getRequestBody(params inference.RewriteRequest) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model:       client.model,
		Temperature: client.temperature,
		MaxTokens:   client.maxTokens,
		Messages: []Message{
			{Role: RoleSystem, Content: params.SystemPrompt},
			{Role: RoleUser, Content: params.UserPrompt},
		},
	}
}

func (client *Client) rewrite(
	ctx context.Context,
	params inference.RewriteRequest,
) (inference.RewriteResponse, error) {
	requestBody := client.getRequestBody(params)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+client.apiKey).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return inference.RewriteResponse{}, fmt.Errorf("httpClient.Post > %w", ctxErr)
		}
		return inference.RewriteResponse{}, &inference.ProviderError{
			Provider: providerName,
			Err:      fmt.Errorf("httpClient.Post > %w", err),
		}
	}
	if response.IsError() {
		return inference.RewriteResponse{}, &inference.ProviderError{
			Provider:   providerName,
			StatusCode: response.StatusCode(),
			Err:        errors.New(errorMessage(response.String())),
		}
	}

	responseBody, _ := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.RewriteResponse{}, &inference.ProviderError{
			Provider: providerName,
			Err:      fmt.Errorf("empty response body or choices: %s", response.String()),
		}
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return inference.RewriteResponse{}, &inference.ProviderError{
			Provider: providerName,
			Err:      fmt.Errorf("empty response content: %s", response.String()),
		}
	}

	slog.Default().Debug("deepseek response",
		"model", responseBody.Model,
		"finishReason", responseBody.Choices[0].FinishReason,
		"totalTokens", responseBody.Usage.TotalTokens,
	)

	return inference.RewriteResponse{
		Text:  content,
		Model: responseBody.Model,
		Usage: inference.Usage{
			PromptTokens:     responseBody.Usage.PromptTokens,
			CompletionTokens: responseBody.Usage.CompletionTokens,
			TotalTokens:      responseBody.Usage.TotalTokens,
		},
	}, nil
}

// errorMessage extracts the provider's message from an error body, falling
// back to the raw body.
func errorMessage(body string) string {
	var decoded errorResponse
	if err := json.Unmarshal([]byte(body), &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "empty error response"
	}
	return body
}
