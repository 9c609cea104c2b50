package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ferretcode/lovebug/internal/auth"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lovebug",
		Short:         "Lovebug map backend",
		Long:          "Crawls social media for lovebug sightings around Seoul and serves them over HTTP and websockets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		newServeCommand(),
		newCrawlCommand(),
		newSeedCommand(),
		newKeygenCommand(),
	)

	return root
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a random value for ADMIN_API_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.GenerateAPIKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}
