package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tripletext/tripletext/internal/output"
	"github.com/tripletext/tripletext/internal/triples"
)

func newLoadCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>...",
		Short: "Load statements and index their entities",
		Long: `Load statement files into the triple store and index the affected
entities in one indexing session.

Files hold one statement per line: subject, predicate and object
separated by tabs, with optional language tag and datatype columns.
Lines starting with '#' and blank lines are skipped.

Examples:
  tripletext load data.tsv
  tripletext load part1.tsv part2.tsv part3.tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), cmd, *cfgPath, args)
		},
	}
}

func runLoad(ctx context.Context, cmd *cobra.Command, cfgPath string, files []string) error {
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

	// Parse input files concurrently; collect on a single channel.
	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan triples.Triple, 256)
	for _, f := range files {
		f := f
		g.Go(func() error {
			return parseStatementFile(gctx, f, ch)
		})
	}
	go func() {
		_ = g.Wait()
		close(ch)
	}()

	var all []triples.Triple
	for t := range ch {
		all = append(all, t)
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := store.AddBatch(ctx, all); err != nil {
		return err
	}

	// Index the loaded entities in one session; abort on any failure so
	// the index never holds a partial load.
	ents := triples.Group(all, ti.Definition())
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

	out.Successf("Indexed %d entities from %d statements (%d files)", len(ents), len(all), len(files))
	return nil
}

// parseStatementFile streams the statements of one file into ch.
func parseStatementFile(ctx context.Context, path string, ch chan<- triples.Triple) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			return fmt.Errorf("%s:%d: expected at least 3 tab-separated columns, got %d", path, lineNo, len(cols))
		}
		t := triples.Triple{
			Subject:   cols[0],
			Predicate: cols[1],
			Object:    cols[2],
		}
		if len(cols) > 3 {
			t.Lang = cols[3]
		}
		if len(cols) > 4 {
			t.Datatype = cols[4]
		}
		select {
		case ch <- t:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
