package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tripletext/tripletext/internal/output"
)

// queryOptions holds CLI flags for query.
type queryOptions struct {
	limit  int
	format string
}

func newQueryCmd(cfgPath *string) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Find entities matching a free-text query",
		Long: `Find entities whose indexed properties match a free-text query.

Unqualified terms search the default field; field-qualified terms
(field:term) are honored per the query syntax.

Examples:
  tripletext query "juniper tree"
  tripletext query "comment:deprecated" --limit 5
  tripletext query "grove" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), cmd, *cfgPath, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results (0 means the configured cap)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runQuery(ctx context.Context, cmd *cobra.Command, cfgPath, qs string, opts queryOptions) error {
	out := output.New(cmd.OutOrStdout())

	_, ti, cleanup, err := setup(cfgPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ids, err := ti.Query(ctx, qs, opts.limit)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		data, err := json.MarshalIndent(ids, "", "  ")
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		out.Printf("%s", data)
		return nil
	}

	for _, id := range ids {
		out.Printf("%s", id.Text)
	}
	out.Mutedf("%d result(s)", len(ids))
	return nil
}
