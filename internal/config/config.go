// Package config loads the humanizer configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment overrides of every configuration key,
// e.g. HUMANIZER_PROVIDER_MODEL for provider.model.
const EnvPrefix = "HUMANIZER"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port                     int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS                     CORSConfig `mapstructure:"cors"`
	ReadHeaderTimeoutSeconds int        `mapstructure:"read_header_timeout_seconds" validate:"min=0"`
	// RequestTimeoutSeconds bounds a whole request when positive.
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds" validate:"min=0"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"min=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,origin"`
}

type ProviderConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model" validate:"required"`
	Temperature    float64 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxTokens      int     `mapstructure:"max_tokens" validate:"min=1"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"min=1"`
	RetryAttempts  uint    `mapstructure:"retry_attempts" validate:"max=10"`
}

type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries" validate:"min=1"`
}

type PromptConfig struct {
	// TemplatePath overrides the embedded rewrite template when set.
	TemplatePath string `mapstructure:"template_path" validate:"omitempty,file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

func (c ServerConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.ReadHeaderTimeoutSeconds) * time.Second
}

func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ConfigLoader struct {
	viper     *viper.Viper
	validator *configValidator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, err := newConfigValidator()
	if err != nil {
		return nil, fmt.Errorf("newConfigValidator > %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/humanizer")
	}

	return &ConfigLoader{
		viper:     v,
		validator: validate,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.read_header_timeout_seconds", 10)
	v.SetDefault("server.request_timeout_seconds", 0)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("provider.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "deepseek-chat")
	v.SetDefault("provider.temperature", 0.75)
	v.SetDefault("provider.max_tokens", 4000)
	v.SetDefault("provider.timeout_seconds", 120)
	v.SetDefault("provider.retry_attempts", 0)
	v.SetDefault("cache.max_entries", 100)
	// Empty means the embedded template is used
	v.SetDefault("prompt.template_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The credential and the port keep the environment names the service has always used
	if err := v.BindEnv("provider.api_key", "DEEPSEEK_API_KEY", EnvPrefix+"_PROVIDER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind DEEPSEEK_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
