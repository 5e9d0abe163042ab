package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/humanizer/internal/apiclient"
	"github.com/at-ishikawa/humanizer/internal/cli"
)

const defaultServerURL = "http://localhost:5000"

func newRemoteCommand() *cobra.Command {
	remoteCommand := &cobra.Command{
		Use:   "remote",
		Short: "Call a running humanizer server",
	}
	var serverURL string
	var timeout time.Duration
	flags := remoteCommand.PersistentFlags()
	flags.StringVar(&serverURL, "server", defaultServerURL, "base URL of the humanizer server")
	flags.DurationVar(&timeout, "timeout", apiclient.DefaultTimeout, "request timeout")

	newClient := func() *apiclient.Client {
		return apiclient.New(serverURL, timeout)
	}

	remoteCommand.AddCommand(
		&cobra.Command{
			Use:   "humanize [file]",
			Short: "Humanize a file, or stdin, through the server",
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

				response, err := newClient().Humanize(cmd.Context(), text)
				if err != nil {
					return fmt.Errorf("client.Humanize() > %w", err)
				}

				printer := cli.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputFormat)
				return printer.PrintResult(cli.Result{
					HumanizedText:   response.HumanizedText,
					ProcessingTime:  response.ProcessingTime,
					OriginalLength:  response.OriginalLength,
					HumanizedLength: response.HumanizedLength,
					Cached:          response.CacheHit,
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the server status and cache size",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				status, err := newClient().Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("client.Status() > %w", err)
				}
				return cli.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputFormat).PrintStatus(status)
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check that the server is healthy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				health, err := newClient().Health(cmd.Context())
				if err != nil {
					return fmt.Errorf("client.Health() > %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), health.Status)
				return err
			},
		},
	)
	return remoteCommand
}
