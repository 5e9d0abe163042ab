package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/humanizer/internal/bootstrap"
	"github.com/at-ishikawa/humanizer/internal/cache"
	"github.com/at-ishikawa/humanizer/internal/config"
	"github.com/at-ishikawa/humanizer/internal/humanizer"
	"github.com/at-ishikawa/humanizer/internal/inference/deepseek"
	"github.com/at-ishikawa/humanizer/internal/logging"
	"github.com/at-ishikawa/humanizer/internal/prompt"
	"github.com/at-ishikawa/humanizer/internal/server"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = server.DefaultVersion

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "humanizer-server",
		Short:         "AI Humanizer HTTP API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configFile, debugMode)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return rootCmd
}

func run(ctx context.Context, configFile string, debugMode bool) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	if err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format, debugMode); err != nil {
		return fmt.Errorf("logging.Setup() > %w", err)
	}

	service, client, err := newService(cfg)
	if err != nil {
		return fmt.Errorf("newService() > %w", err)
	}
	if cfg.Provider.APIKey == "" {
		slog.Default().Warn("DEEPSEEK_API_KEY is not set; rewrite requests will fail until it is")
	}

	app := bootstrap.New(bootstrap.WithShutdownTimeout(cfg.Server.ShutdownTimeout()))
	handler := server.NewHandler(service, server.Options{
		Version:        version,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout(),
	})
	srv := server.New(cfg.Server, handler)

	// Hooks run in reverse order: the server drains before the client closes.
	app.AddShutdownHook(func(ctx context.Context) error {
		stats := service.CacheStats()
		slog.Default().Info("cache stats",
			"entries", stats.Entries,
			"hits", stats.Hits,
			"misses", stats.Misses,
			"evictions", stats.Evictions,
		)
		return client.Close()
	})
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server",
			"addr", srv.Addr,
			"model", client.GetModel(),
			"cache_max_entries", cfg.Cache.MaxEntries,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe() > %w", err)
		}
		return nil
	})
}

func loadConfig(configFile string) (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func newService(cfg *config.Config) (*humanizer.Service, *deepseek.Client, error) {
	builder, err := prompt.NewBuilder(cfg.Prompt.TemplatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("prompt.NewBuilder() > %w", err)
	}
	client := deepseek.NewClient(deepseek.Config{
		BaseURL:       cfg.Provider.BaseURL,
		APIKey:        cfg.Provider.APIKey,
		Model:         cfg.Provider.Model,
		Temperature:   cfg.Provider.Temperature,
		MaxTokens:     cfg.Provider.MaxTokens,
		Timeout:       cfg.Provider.Timeout(),
		RetryAttempts: cfg.Provider.RetryAttempts,
	})
	return humanizer.NewService(client, builder, cache.New(cfg.Cache.MaxEntries)), client, nil
}
