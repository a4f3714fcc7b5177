package main

import (
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	options := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "vecindex",
		Short: "Manage named embedding indexes over pluggable vector stores",
		Long: `vecindex creates named indexes backed by a vector store (memory, sqlite,
pgvector or qdrant), ingests texts through a splitter and an embedding
model, and runs similarity search.

Without --config an all local setup under ~/.vecindex is used.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&options.configPath, "config", "c", "", "config yaml (defaults to a local sqlite setup)")
	cmd.PersistentFlags().StringVar(&options.logLevel, "log-level", "", "log level override: debug|info|warn|error")

	cmd.AddCommand(
		newCreateCmd(options),
		newAddCmd(options),
		newSearchCmd(options),
		newInfoCmd(options),
		newListCmd(options),
		newDropCmd(options),
		newServeCmd(options),
	)
	return cmd
}
