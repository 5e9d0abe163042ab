// Package apiclient talks to a running humanizer server.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 150 * time.Second

type HumanizeResponse struct {
	Success         bool    `json:"success"`
	HumanizedText   string  `json:"humanized_text"`
	ProcessingTime  float64 `json:"processing_time"`
	OriginalLength  int     `json:"original_length"`
	HumanizedLength int     `json:"humanized_length"`
	Cached          bool    `json:"cached"`
	// CacheHit comes from the X-Cache response header.
	CacheHit bool `json:"-"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	CacheSize int    `json:"cache_size" yaml:"cache_size"`
	Service   string `json:"service"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("humanizer API error (status %d): %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Client struct {
	httpClient *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{httpClient: client}
}

func (c *Client) Humanize(ctx context.Context, text string) (HumanizeResponse, error) {
	var result HumanizeResponse
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post("/humanize")
	if err != nil {
		return result, fmt.Errorf("client.R.Post > %w", err)
	}
	if err := decode(res, &result); err != nil {
		return result, err
	}
	result.CacheHit = res.Header().Get("X-Cache") == "HIT"
	return result, nil
}

func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var result StatusResponse
	res, err := c.httpClient.R().SetContext(ctx).Get("/status")
	if err != nil {
		return result, fmt.Errorf("client.R.Get > %w", err)
	}
	return result, decode(res, &result)
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var result HealthResponse
	res, err := c.httpClient.R().SetContext(ctx).Get("/health")
	if err != nil {
		return result, fmt.Errorf("client.R.Get > %w", err)
	}
	return result, decode(res, &result)
}

func decode(res *resty.Response, v any) error {
	if res.StatusCode() != http.StatusOK {
		message := strings.TrimSpace(string(res.Body()))
		var body errorBody
		if err := json.Unmarshal(res.Body(), &body); err == nil && body.Error != "" {
			message = body.Error
		}
		return &APIError{StatusCode: res.StatusCode(), Message: message}
	}
	if err := json.Unmarshal(res.Body(), v); err != nil {
		return fmt.Errorf("json.Unmarshal > %w", err)
	}
	return nil
}
