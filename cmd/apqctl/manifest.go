package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360/persistgraphql/persisted"
)

// Manifest output formats
const (
	FormatMap    = "map"
	FormatApollo = "apollo"
)

// ManifestOptions holds manifest command flags
type ManifestOptions struct {
	Format string
	Output string
}

// NewManifestCommand creates the manifest command
func NewManifestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ManifestOptions{}

	cmd := &cobra.Command{
		Use:   "manifest <path>...",
		Short: "Export queries as a persisted query manifest",
		Long: `Read every query under the given paths and write a manifest the
server can load with --queries.

Formats:
  map     a JSON object of hash to canonical query
  apollo  an Apollo persisted query manifest`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.Format != FormatMap && opts.Format != FormatApollo {
				return fmt.Errorf("invalid format %q: must be %s or %s", opts.Format, FormatMap, FormatApollo)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := persisted.NewRegistry()
			for _, path := range args {
				count, err := persisted.LoadQueryFiles(registry, path)
				if err != nil {
					return err
				}
				rootOpts.Logger().Debug("Loaded queries", "path", path, "count", count)
			}

			data, err := renderManifest(registry.Snapshot(), opts.Format)
			if err != nil {
				return err
			}

			if opts.Output == "" || opts.Output == "-" {
				return writeAll(cmd.OutOrStdout(), data)
			}
			if err := os.WriteFile(opts.Output, data, 0644); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			rootOpts.Logger().Info("Wrote manifest", "path", opts.Output, "queries", registry.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatMap, "output format (map|apollo)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// renderManifest encodes queries, keyed by hash, as indented JSON
func renderManifest(queries map[string]string, format string) ([]byte, error) {
	var v interface{} = queries
	if format == FormatApollo {
		manifest, err := persisted.NewApolloManifest(queries)
		if err != nil {
			return nil, err
		}
		v = manifest
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func writeAll(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}
