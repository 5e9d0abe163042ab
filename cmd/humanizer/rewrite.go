package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/humanizer/internal/cache"
	"github.com/at-ishikawa/humanizer/internal/cli"
	"github.com/at-ishikawa/humanizer/internal/humanizer"
	"github.com/at-ishikawa/humanizer/internal/inference/deepseek"
	"github.com/at-ishikawa/humanizer/internal/prompt"
)

func newRewriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Humanize a file, or stdin, by calling the provider directly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			text, err := cli.ReadInput(path, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("cli.ReadInput() > %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			builder, err := prompt.NewBuilder(cfg.Prompt.TemplatePath)
			if err != nil {
				return fmt.Errorf("prompt.NewBuilder() > %w", err)
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
			defer func() {
				_ = client.Close()
			}()

			service := humanizer.NewService(client, builder, cache.New(cfg.Cache.MaxEntries))
			result, err := service.Humanize(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("service.Humanize() > %w", err)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputFormat)
			return printer.PrintResult(cli.Result{
				HumanizedText:   result.Text,
				ProcessingTime:  result.Elapsed.Seconds(),
				OriginalLength:  result.OriginalLength,
				HumanizedLength: result.HumanizedLength,
				Cached:          result.Hit,
			})
		},
	}
}
