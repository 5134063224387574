package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type DDLOptions struct {
	All   bool
	Apply bool
}

// NewDDLCommand: DDL таблиц экспорта. По умолчанию только для
// сущностей с существующими таблицами, с --all для всех анкет.
func NewDDLCommand(root *RootOptions) *cobra.Command {
	opts := &DDLOptions{}
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print or apply export table DDL for the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			b, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.close()

			reg, _, err := bootstrap(cmd.Context(), cfg, b, log, opts.All)
			if err != nil {
				return err
			}
			if opts.Apply {
				if err := b.apply(cmd.Context(), reg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied DDL for %d entities\n", reg.Len())
				return nil
			}
			script, err := b.ddl(reg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "include questionnaires whose tables do not exist yet")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "execute the DDL instead of printing it")
	return cmd
}
