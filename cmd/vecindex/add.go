package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/viant/vecindex/extract"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/source"
)

func newAddCmd(options *globalOptions) *cobra.Command {
	var (
		texts    []string
		files    []string
		dir      string
		include  []string
		exclude  []string
		maxSize  int
		metadata []string
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add texts, files or a directory tree to an index",
		Long: `Add texts to an index. Every --text value and every --file content is a
document of one batch sharing the --meta attributes. Files may be local
paths or any afs URL (s3://, gs://); PDF, DOCX, XLSX and XLS files are
converted to text first.

With --dir every file of the tree becomes its own batch whose metadata is
--meta plus "path", the file path relative to the tree root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			attrs, err := parseMetadata(metadata)
			if err != nil {
				return err
			}
			var batches []schema.Text
			documents := append([]string{}, texts...)
			fs := afs.New()
			for _, URL := range files {
				data, err := fs.DownloadWithURL(ctx, URL)
				if err != nil {
					return fmt.Errorf("read %s: %w", URL, err)
				}
				text, err := extract.Text(URL, data)
				if err != nil {
					return fmt.Errorf("extract %s: %w", URL, err)
				}
				documents = append(documents, text)
			}
			if len(documents) > 0 {
				batches = append(batches, schema.Text{Texts: documents, Metadata: attrs})
			}
			if dir != "" {
				filter := source.NewFilter(source.WithInclusions(include...), source.WithExclusions(exclude...), source.WithMaxFileSize(maxSize))
				collected, err := source.NewCollector(filter).Collect(ctx, dir)
				if err != nil {
					return err
				}
				for _, document := range collected {
					batches = append(batches, schema.Text{Texts: []string{document.Text}, Metadata: withPath(attrs, document.Path)})
				}
			}
			if len(batches) == 0 {
				return fmt.Errorf("nothing to add: use --text, --file or --dir")
			}

			a, err := openApp(ctx, options, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()
			idx, err := a.manager.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if err := idx.AddTexts(ctx, batches); err != nil {
				return err
			}
			count, err := idx.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d batch(es) to %s, %d record(s) stored\n", len(batches), idx.Name(), count)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&texts, "text", "t", nil, "text to add (repeatable)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "file or URL whose content is added (repeatable)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory or URL prefix to add file by file")
	cmd.Flags().StringSliceVar(&include, "include", nil, "with --dir, only add paths matching these patterns")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "with --dir, additional exclusion patterns")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "with --dir, skip files larger than this many bytes")
	cmd.Flags().StringArrayVar(&metadata, "meta", nil, "batch metadata key=value (repeatable)")
	return cmd
}

func withPath(attrs map[string]string, path string) map[string]string {
	result := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		result[k] = v
	}
	result[source.PathKey] = path
	return result
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		result[strings.TrimSpace(key)] = value
	}
	return result, nil
}
