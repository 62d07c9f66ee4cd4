// Package commands implements the bricksql CLI subcommands.
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database"
	"github.com/gaborage/bricksql/database/schema"
	"github.com/gaborage/bricksql/internal/querydef"
	"github.com/gaborage/bricksql/logger"
)

// GlobalOptions holds flags shared by every subcommand.
type GlobalOptions struct {
	ConfigPath string
}

// NewRootCommand assembles the bricksql command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "bricksql",
		Short: "Render and run multi-table SELECT definitions",
		Long: `bricksql builds dialect-aware multi-table SELECT statements from YAML
query definitions, using the tables declared under schema.tables in the
configuration file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultFile, "Configuration file")

	cmd.AddCommand(
		NewRenderCommand(opts),
		NewQueryCommand(opts),
		NewVersionCommand(version),
	)
	return cmd
}

// session is what a subcommand needs to build a Select.
type session struct {
	cfg    *config.Config
	log    logger.Logger
	schema *schema.Registry
	def    *querydef.Definition
}

func openSession(opts *GlobalOptions, queryPath string, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Pretty).WithFields(map[string]any{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	reg, err := schema.FromConfig(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	if len(reg.Tables()) == 0 {
		return nil, fmt.Errorf("no tables declared under schema.tables in %s", opts.ConfigPath)
	}

	def, err := querydef.Load(queryPath)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, log: log, schema: reg, def: def}, nil
}

func (s *session) selectOptions(dialect string) []database.Option {
	opts := []database.Option{
		database.WithConfig(&s.cfg.Database),
		database.WithLogger(s.log),
	}
	if dialect != "" {
		opts = append(opts, database.WithDialect(dialect))
	}
	return opts
}
