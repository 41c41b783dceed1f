// Package cmd provides the CLI commands for tripletext.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tripletext/tripletext/internal/config"
	"github.com/tripletext/tripletext/internal/logging"
	"github.com/tripletext/tripletext/internal/textindex"
	"github.com/tripletext/tripletext/pkg/version"
)

// NewRootCmd creates the root command for the tripletext CLI.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "tripletext",
		Short: "Free-text entity index beside a triple store",
		Long: `tripletext maintains a full-text index over the textual properties of
entities in a triple store. Statements are loaded into an SQLite store
and their mapped property values indexed for search; queries resolve
free text back to entity identifiers.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("tripletext version {{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "tripletext.yaml", "Path to configuration file")

	cmd.AddCommand(
		newLoadCmd(&cfgPath),
		newReindexCmd(&cfgPath),
		newGetCmd(&cfgPath),
		newQueryCmd(&cfgPath),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads the configuration, configures logging, and opens the text
// index. The returned cleanup closes the index and flushes logs.
func setup(cfgPath string) (*config.Config, *textindex.TextIndex, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logCleanup, err := logging.SetupDefault(logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.File,
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	def, err := cfg.EntityMap.EntityDefinition()
	if err != nil {
		logCleanup()
		return nil, nil, nil, err
	}

	ti, err := textindex.Open(cfg.Index.Path, def, cfg.Index.Options())
	if err != nil {
		logCleanup()
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = ti.Close()
		logCleanup()
	}
	return cfg, ti, cleanup, nil
}
