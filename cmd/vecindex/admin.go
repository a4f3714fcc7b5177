package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newInfoCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME",
		Short: "Show an index definition and its record count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, options, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()
			idx, err := a.manager.Load(ctx, args[0])
			if err != nil {
				return err
			}
			count, err := idx.Count(ctx)
			if err != nil {
				return err
			}
			def := idx.Definition()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:      %s\n", def.Name)
			fmt.Fprintf(out, "backend:   %s\n", def.Backend)
			fmt.Fprintf(out, "model:     %s\n", def.EmbeddingModel)
			fmt.Fprintf(out, "splitter:  %s\n", def.TextSplitter)
			fmt.Fprintf(out, "dedup:     %s\n", strings.Join(def.DedupFields, ","))
			fmt.Fprintf(out, "created:   %s\n", def.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "records:   %d\n", count)
			return nil
		},
	}
}

func newListCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, options, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()
			defs, err := a.manager.ListIndexes(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBACKEND\tMODEL\tSPLITTER\tDEDUP")
			for _, def := range defs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", def.Name, def.Backend, def.EmbeddingModel, def.TextSplitter, strings.Join(def.DedupFields, ","))
			}
			return w.Flush()
		},
	}
}

func newDropCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drop NAME",
		Short: "Drop an index and its collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, options, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()
			if err := a.manager.DropIndex(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped index %s\n", args[0])
			return nil
		},
	}
}
