package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gaborage/bricksql/database"
	"github.com/gaborage/bricksql/database/types"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Dialect string
	Format  string
}

// Rendered is the output of the render command.
type Rendered struct {
	Dialect string `json:"dialect" yaml:"dialect"`
	SQL     string `json:"sql" yaml:"sql"`
	Params  []any  `json:"params" yaml:"params"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(global *GlobalOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <query.yaml>",
		Short: "Print the SQL and parameters of a query definition",
		Long: `Builds the statement described by a query definition and prints the SQL
text with its ordered parameter list. Nothing is executed.`,
		Example: `  # Render with the dialect from config.yaml
  bricksql render queries/users.yaml

  # Render for SQL Server as YAML
  bricksql render queries/users.yaml --dialect mssql --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(global, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "Override the dialect (mysql, mssql, sqlite)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "Output format (json, yaml)")

	return cmd
}

func runRender(global *GlobalOptions, opts *RenderOptions, queryPath string, stdout, stderr io.Writer) error {
	if opts.Format != "json" && opts.Format != "yaml" {
		return fmt.Errorf("unsupported format %q (expected json or yaml)", opts.Format)
	}

	s, err := openSession(global, queryPath, stderr)
	if err != nil {
		return err
	}

	q := database.NewSelect(s.schema, noExecute, s.selectOptions(opts.Dialect)...)
	if err := s.def.Apply(q); err != nil {
		return err
	}

	sql, params, err := q.ToSQL()
	if err != nil {
		return err
	}
	if params == nil {
		params = []any{}
	}

	out := Rendered{Dialect: q.Dialect().Family(), SQL: sql, Params: params}
	if opts.Format == "yaml" {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var noExecute = types.ExecutorFunc(func(context.Context, string, []any) ([]types.Row, error) {
	return nil, fmt.Errorf("render does not execute queries")
})
