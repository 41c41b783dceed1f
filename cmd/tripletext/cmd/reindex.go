package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tripletext/tripletext/internal/output"
	"github.com/tripletext/tripletext/internal/triples"
)

func newReindexCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the text index from the triple store",
		Long: `Rebuild the text index from the statements in the triple store.

Use this to reconcile after a failed commit, or after changing the
entity map or analyzer configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(cmd.Context(), cmd, *cfgPath)
		},
	}
}

func runReindex(ctx context.Context, cmd *cobra.Command, cfgPath string) error {
	out := output.New(cmd.OutOrStdout())

	cfg, ti, cleanup, err := setup(cfgPath)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := triples.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ents, err := store.Entities(ctx, ti.Definition())
	if err != nil {
		return err
	}

	if err := ti.StartIndexing(); err != nil {
		return err
	}
	for _, e := range ents {
		if err := ti.AddEntity(e); err != nil {
			_ = ti.AbortIndexing()
			return err
		}
	}
	if err := ti.FinishIndexing(); err != nil {
		return err
	}

	out.Successf("Reindexed %d entities", len(ents))
	return nil
}
