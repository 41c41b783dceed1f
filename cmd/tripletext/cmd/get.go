package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tripletext/tripletext/internal/output"
)

func newGetCmd(cfgPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <identifier>",
		Short: "Look up one entity by identifier",
		Long: `Look up one entity by identifier and print its indexed field values.

Examples:
  tripletext get http://example.org/book/42
  tripletext get http://example.org/book/42 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), cmd, *cfgPath, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runGet(ctx context.Context, cmd *cobra.Command, cfgPath, id, format string) error {
	out := output.New(cmd.OutOrStdout())

	_, ti, cleanup, err := setup(cfgPath)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := ti.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		out.Mutedf("not found: %s", id)
		return nil
	}

	if format == "json" {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		out.Printf("%s", data)
		return nil
	}

	def := ti.Definition()
	out.Printf("%s", id)
	for _, f := range def.Fields() {
		for _, v := range rec[f] {
			out.Printf("  %s: %s", f, v.Text)
		}
	}
	return nil
}
