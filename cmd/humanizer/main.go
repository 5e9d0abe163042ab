package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/humanizer/internal/cli"
	"github.com/at-ishikawa/humanizer/internal/config"
	"github.com/at-ishikawa/humanizer/internal/logging"
)

var (
	configFile   string
	debugMode    bool
	outputFormat = cli.OutputFormatText
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "humanizer",
		Short:         "Rewrite AI-sounding text so it reads like a person wrote it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(cmd.ErrOrStderr(), "warn", "text", debugMode)
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug mode")
	flags.VarP(&outputFormat, "output", "o", fmt.Sprintf("Output format. Possible values are %v", cli.AllOutputFormats))

	rootCommand.AddCommand(
		newRewriteCommand(),
		newRemoteCommand(),
	)
	return rootCommand
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loader.Load() > %w", err)
	}
	return cfg, nil
}
