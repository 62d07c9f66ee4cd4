package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Timeout time.Duration
}

// Entry is one table object in a printed model-mode row.
type Entry struct {
	Table  string `json:"table"`
	Alias  string `json:"alias"`
	Object any    `json:"object"`
}

// connect opens the configured database. Tests replace it.
var connect = func(cfg *config.DatabaseConfig, log logger.Logger) (types.Connection, error) {
	return database.NewConnection(cfg, log)
}

// NewQueryCommand creates the query command.
func NewQueryCommand(global *GlobalOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <query.yaml>",
		Short: "Run a query definition and print the hydrated rows as JSON",
		Long: `Runs the statement described by a query definition against the database
configured under database.* and prints one JSON array element per row.

Rows are printed as lists of {table, alias, object} entries, or as flat
column maps when the definition selects raw expressions.`,
		Example: `  bricksql query queries/users.yaml --config prod.yaml --timeout 5s`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), global, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 30*time.Second, "Query timeout")

	return cmd
}

func runQuery(ctx context.Context, global *GlobalOptions, opts *QueryOptions, queryPath string, stdout, stderr io.Writer) error {
	s, err := openSession(global, queryPath, stderr)
	if err != nil {
		return err
	}
	if !config.IsDatabaseConfigured(&s.cfg.Database) {
		return fmt.Errorf("no database configured: set database.type in %s or %sDATABASE_TYPE",
			global.ConfigPath, config.EnvPrefix)
	}

	conn, err := connect(&s.cfg.Database, s.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			s.log.Warn().Err(cerr).Msg("Failed to close database connection")
		}
	}()

	q := database.NewSelect(s.schema, conn, s.selectOptions("")...)
	if err := s.def.Apply(q); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	res, err := q.Fetch(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(printable(res))
}

func printable(res *database.Result) []any {
	out := make([]any, 0, res.Len())
	for _, rec := range res.Records {
		if res.Raw() {
			out = append(out, rec.Values)
			continue
		}
		entries := make([]Entry, 0, len(rec.Entries))
		for _, e := range rec.Entries {
			entries = append(entries, Entry{Table: e.Table, Alias: e.Alias, Object: e.Object})
		}
		out = append(out, entries)
	}
	return out
}
