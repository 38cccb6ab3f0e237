package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360/persistgraphql/errors"
	"github.com/c360/persistgraphql/persisted"
)

// NewValidateCommand creates the validate command
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check that query files parse",
		Long: `Check every query file under the given paths without starting a server.
The command fails on the first path holding a document that does not parse.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			total := 0
			for _, path := range args {
				queries, err := persisted.ReadQueryFiles(path)
				if err != nil {
					var perr *errors.ParseError
					if stderrors.As(err, &perr) {
						return fmt.Errorf("%s: invalid query: %w", perr.Source, perr.Err)
					}
					return err
				}
				rootOpts.Logger().Debug("Validated path", "path", path, "count", len(queries))
				_, _ = fmt.Fprintf(out, "ok  %s  (%d queries)\n", path, len(queries))
				total += len(queries)
			}
			_, _ = fmt.Fprintf(out, "%d queries valid\n", total)
			return nil
		},
	}
}
