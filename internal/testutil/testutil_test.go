package testutil

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir, "cache:\n  max_entries: 3\n")

	assert.Equal(t, filepath.Join(tmpDir, "config.yml"), got)
	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "cache:\n  max_entries: 3\n", string(content))
}

func TestSetupTestConfigWithProvider(t *testing.T) {
	got := SetupTestConfigWithProvider(t, t.TempDir(), "http://127.0.0.1:1234")

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), "base_url: http://127.0.0.1:1234")
	assert.Contains(t, string(content), "api_key: fake-key-for-testing")
}

func TestProvider(t *testing.T) {
	t.Run("answers with the content", func(t *testing.T) {
		p := NewProvider(t, "hello")

		res, err := http.Post(p.URL+"/chat/completions", "application/json", strings.NewReader(`{"model":"deepseek-chat"}`))
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusOK, res.StatusCode)
		var body struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		require.Len(t, body.Choices, 1)
		assert.Equal(t, "hello", body.Choices[0].Message.Content)
		assert.Equal(t, 1, p.Calls())
		assert.Equal(t, []map[string]any{{"model": "deepseek-chat"}}, p.Requests())
	})

	t.Run("echoes the quoted text of the last message", func(t *testing.T) {
		p := NewProvider(t, "ignored", WithEcho())

		tests := []struct {
			name    string
			content string
			want    string
		}{
			{name: "quoted", content: "Rewrite this:\n\n\"\"\"Hello there.\"\"\"\n\nThanks.", want: "Hello there."},
			{name: "unquoted", content: "Hello there.", want: "Hello there."},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				payload, err := json.Marshal(map[string]any{
					"messages": []map[string]string{
						{"role": "system", "content": "be human"},
						{"role": "user", "content": tc.content},
					},
				})
				require.NoError(t, err)

				res, err := http.Post(p.URL, "application/json", strings.NewReader(string(payload)))
				require.NoError(t, err)
				defer res.Body.Close()

				var body struct {
					Choices []struct {
						Message struct {
							Content string `json:"content"`
						} `json:"message"`
					} `json:"choices"`
				}
				require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
				require.Len(t, body.Choices, 1)
				assert.Equal(t, tc.want, body.Choices[0].Message.Content)
			})
		}
	})

	t.Run("fails with the configured status", func(t *testing.T) {
		p := NewProvider(t, "", WithStatus(http.StatusServiceUnavailable))

		res, err := http.Post(p.URL, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
		assert.Equal(t, 1, p.Calls())
	})
}
