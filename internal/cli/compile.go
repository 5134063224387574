package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"surveygraph/internal/engine"
	"surveygraph/internal/graph"
	"surveygraph/internal/query"
)

type CompileOptions struct {
	Dialect string
	Limit   int
}

// NewCompileCommand печатает SQL для выборки, ничего не выполняя.
// Наличие таблиц не проверяется.
func NewCompileCommand(root *RootOptions) *cobra.Command {
	opts := &CompileOptions{}
	cmd := &cobra.Command{
		Use:   "compile <entity> <selection>",
		Short: "Print the SQL statement for a selection",
		Example: `  surveygraph compile --source catalog --catalog catalog.yaml \
    primary_income_1 '{ age household { member_name } }'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			sel, err := graph.ParseSelection(args[1])
			if err != nil {
				return fmt.Errorf("parse selection: %w", err)
			}

			b, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.close()

			dialect := b.dialect
			if opts.Dialect != "" {
				d, ok := query.DialectByName(opts.Dialect)
				if !ok {
					return fmt.Errorf("unknown dialect %q (allowed: postgres|sqlite)", opts.Dialect)
				}
				dialect = d
			}

			reg, _, err := bootstrap(cmd.Context(), cfg, b, log, true)
			if err != nil {
				return err
			}
			limit := opts.Limit
			if limit <= 0 {
				limit = cfg.Query.DefaultLimit
			}
			eng := engine.New(query.NewCompiler(reg, cfg.Query.MaxLimit), dialect, nil, nil, log)
			sql, _, err := eng.Statement(cmd.Context(), args[0], sel, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sql)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (postgres|sqlite), defaults to the store driver")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "row limit, defaults to query.default_limit")
	return cmd
}
