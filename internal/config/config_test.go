package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                     5000,
			CORS:                     CORSConfig{AllowedOrigins: []string{"*"}},
			ReadHeaderTimeoutSeconds: 10,
			RequestTimeoutSeconds:    0,
			ShutdownTimeoutSeconds:   10,
		},
		Provider: ProviderConfig{
			BaseURL:        "https://api.deepseek.com/v1",
			Model:          "deepseek-chat",
			Temperature:    0.75,
			MaxTokens:      4000,
			TimeoutSeconds: 120,
		},
		Cache: CacheConfig{MaxEntries: 100},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// clearEnv unsets the variables Load reads so the host environment does not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DEEPSEEK_API_KEY",
		"PORT",
		"HUMANIZER_SERVER_PORT",
		"HUMANIZER_PROVIDER_API_KEY",
		"HUMANIZER_PROVIDER_MODEL",
		"HUMANIZER_CACHE_MAX_ENTRIES",
	} {
		t.Setenv(name, "")
	}
}

func TestConfigLoader_Load(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "rewrite.tmpl")
	require.NoError(t, os.WriteFile(templatePath, []byte("{{ .Text }}"), 0o644))

	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `server:
  port: 8080
  cors:
    allowed_origins:
      - http://localhost:3000
  request_timeout_seconds: 30
provider:
  model: deepseek-reasoner
  temperature: 0.5
  retry_attempts: 2
cache:
  max_entries: 10
prompt:
  template_path: ` + templatePath + `
log:
  level: debug
  format: json
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 8080
				cfg.Server.CORS.AllowedOrigins = []string{"http://localhost:3000"}
				cfg.Server.RequestTimeoutSeconds = 30
				cfg.Provider.Model = "deepseek-reasoner"
				cfg.Provider.Temperature = 0.5
				cfg.Provider.RetryAttempts = 2
				cfg.Cache.MaxEntries = 10
				cfg.Prompt.TemplatePath = templatePath
				cfg.Log = LogConfig{Level: "debug", Format: "json"}
				return cfg
			},
		},
		{
			name:            "explicit config file path",
			configContent:   "cache:\n  max_entries: 5\n",
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Cache.MaxEntries = 5
				return cfg
			},
		},
		{
			name:          "environment variables",
			configContent: "server:\n  port: 8080\n",
			env: map[string]string{
				"DEEPSEEK_API_KEY":         "sk-test",
				"PORT":                     "9000",
				"HUMANIZER_PROVIDER_MODEL": "deepseek-reasoner",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9000
				cfg.Provider.APIKey = "sk-test"
				cfg.Provider.Model = "deepseek-reasoner"
				return cfg
			},
		},
		{
			name: "prefixed port takes precedence over PORT",
			env: map[string]string{
				"PORT":                  "9000",
				"HUMANIZER_SERVER_PORT": "9100",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9100
				return cfg
			},
		},
		{
			name:              "invalid YAML format",
			configContent:     "server:\n  port: 8080\n  invalid yaml format here [[[\n",
			wantErrorContains: []string{"configuration file found but could not be read", "Please check the file format and permissions"},
		},
		{
			name:              "invalid type",
			configContent:     "server:\n  port: not-a-number\n",
			wantErrorContains: []string{"invalid configuration format"},
		},
		{
			name:              "out of range values",
			configContent:     "server:\n  port: 70000\ncache:\n  max_entries: 0\n",
			wantErrorContains: []string{"invalid configuration", "port must be", "max_entries must be 1 or greater"},
		},
		{
			name:              "unknown log level",
			configContent:     "log:\n  level: verbose\n",
			wantErrorContains: []string{"level must be one of [debug info warn error]"},
		},
		{
			name:              "missing template file",
			configContent:     "prompt:\n  template_path: /nonexistent/rewrite.tmpl\n",
			wantErrorContains: []string{"prompt.template_path must be an existing and readable file"},
		},
		{
			name:              "malformed CORS origin",
			configContent:     "server:\n  cors:\n    allowed_origins:\n      - localhost:3000\n",
			wantErrorContains: []string{"server.cors.allowed_origins[0] must be \"*\" or an http(s) origin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			tempDir := t.TempDir()
			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "humanizer.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0o644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yml"), []byte(tt.configContent), 0o644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestServerConfig_Durations(t *testing.T) {
	cfg := ServerConfig{ReadHeaderTimeoutSeconds: 10, RequestTimeoutSeconds: 0, ShutdownTimeoutSeconds: 3}
	assert.Equal(t, "10s", cfg.ReadHeaderTimeout().String())
	assert.Zero(t, cfg.RequestTimeout())
	assert.Equal(t, "3s", cfg.ShutdownTimeout().String())
	assert.Equal(t, "2m0s", ProviderConfig{TimeoutSeconds: 120}.Timeout().String())
}
