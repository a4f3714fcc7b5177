package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/vecindex/vectordb"
)

func newCreateCmd(options *globalOptions) *cobra.Command {
	var (
		dim          int
		metric       string
		model        string
		splitterKind string
		dedupFields  []string
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an index and its vector collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, options, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()

			parsed, err := vectordb.ParseMetric(metric)
			if err != nil {
				return err
			}
			params := vectordb.CollectionParams{Name: args[0], Dim: dim, Metric: parsed, DedupFields: dedupFields}
			if err := a.manager.CreateIndex(ctx, params, model, splitterKind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created index %s (backend=%s dim=%d metric=%s model=%s splitter=%s)\n",
				params.Name, a.manager.Backend(), dim, parsed, model, splitterKind)
			return nil
		},
	}
	cmd.Flags().IntVar(&dim, "dim", 384, "embedding dimension")
	cmd.Flags().StringVar(&metric, "metric", string(vectordb.Cosine), "distance metric: cosine|dot|euclidean")
	cmd.Flags().StringVarP(&model, "model", "m", "simple", "embedding model name")
	cmd.Flags().StringVarP(&splitterKind, "splitter", "s", "noop", "text splitter: noop|newline|size|markdown")
	cmd.Flags().StringSliceVar(&dedupFields, "dedup", nil, "metadata keys identifying a record, comma separated")
	return cmd
}
