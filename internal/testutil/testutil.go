// Package testutil provides shared test helpers for config files and a stub chat completions provider.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig writes content to config.yml in tmpDir and returns its path.
func SetupTestConfig(t *testing.T, tmpDir string, content string) string {
	t.Helper()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

// SetupTestConfigWithProvider writes a config file pointing the provider at baseURL
// with a fake API key, so tests never reach the real API.
func SetupTestConfigWithProvider(t *testing.T, tmpDir string, baseURL string) string {
	t.Helper()
	return SetupTestConfig(t, tmpDir, "provider:\n  base_url: "+baseURL+"\n  api_key: fake-key-for-testing\n")
}

// Provider is an OpenAI-compatible chat completions stub.
type Provider struct {
	*httptest.Server

	status  int
	content string
	echo    bool
	calls   atomic.Int32

	mu       sync.Mutex
	requests []map[string]any
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithStatus makes the provider fail with status and an OpenAI-style error body.
func WithStatus(status int) ProviderOption {
	return func(p *Provider) {
		p.status = status
	}
}

// WithEcho makes the provider answer with the text quoted between the first
// pair of triple quotes in the last message, or the whole message when there
// is none. The content passed to NewProvider is ignored.
func WithEcho() ProviderOption {
	return func(p *Provider) {
		p.echo = true
	}
}

// NewProvider starts a provider answering every completion with content.
// The server is closed when the test ends.
func NewProvider(t *testing.T, content string, opts ...ProviderOption) *Provider {
	t.Helper()
	p := &Provider{status: http.StatusOK, content: content}
	for _, opt := range opts {
		opt(p)
	}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serveHTTP))
	t.Cleanup(p.Close)
	return p
}

func (p *Provider) serveHTTP(w http.ResponseWriter, r *http.Request) {
	p.calls.Add(1)

	var request map[string]any
	if body, err := io.ReadAll(r.Body); err == nil {
		_ = json.Unmarshal(body, &request)
	}
	p.mu.Lock()
	p.requests = append(p.requests, request)
	p.mu.Unlock()

	content := p.content
	if p.echo {
		content = echoText(request)
	}

	w.Header().Set("Content-Type", "application/json")
	if p.status != http.StatusOK {
		w.WriteHeader(p.status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "deepseek-chat",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
}

func echoText(request map[string]any) string {
	messages, _ := request["messages"].([]any)
	if len(messages) == 0 {
		return ""
	}
	last, _ := messages[len(messages)-1].(map[string]any)
	text, _ := last["content"].(string)

	const quote = `"""`
	_, rest, found := strings.Cut(text, quote)
	if !found {
		return text
	}
	quoted, _, found := strings.Cut(rest, quote)
	if !found {
		return text
	}
	return quoted
}

// Calls returns the number of requests received so far.
func (p *Provider) Calls() int {
	return int(p.calls.Load())
}

// Requests returns the decoded JSON bodies received so far.
func (p *Provider) Requests() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]any(nil), p.requests...)
}
