package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/c360/persistgraphql/persisted"
)

// NewHashCommand creates the hash command
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	var showQuery bool

	cmd := &cobra.Command{
		Use:   "hash [path...]",
		Short: "Print the persisted query hash of each query",
		Long: `Print one line per query: its SHA-256 hash and the file it came from.

Paths may be query documents, JSON or YAML query maps, Apollo manifests or
directories of those. With no paths the query is read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return hashStdin(cmd.InOrStdin(), out, showQuery)
			}

			for _, path := range args {
				queries, err := persisted.ReadQueryFiles(path)
				if err != nil {
					return err
				}
				rootOpts.Logger().Debug("Read queries", "path", path, "count", len(queries))
				for _, q := range queries {
					printHash(out, persisted.Hash(q.Canonical), q.Source, q.Canonical, showQuery)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showQuery, "query", "q", false, "also print the canonical query")
	return cmd
}

func hashStdin(in io.Reader, out io.Writer, showQuery bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	canonical, err := persisted.Canonicalize(string(data))
	if err != nil {
		return err
	}
	printHash(out, persisted.Hash(canonical), "-", canonical, showQuery)
	return nil
}

func printHash(out io.Writer, hash, source, canonical string, showQuery bool) {
	_, _ = fmt.Fprintf(out, "%s  %s\n", hash, source)
	if showQuery {
		_, _ = fmt.Fprintln(out, canonical)
	}
}
