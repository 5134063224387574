package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"surveygraph/internal/schema"
)

type SchemaOptions struct {
	Format string
}

// NewSchemaCommand: bootstrap без запуска сервера, печатает отчёт.
func NewSchemaCommand(root *RootOptions) *cobra.Command {
	opts := &SchemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Run the schema bootstrap and print its report",
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

			_, report, err := bootstrap(cmd.Context(), cfg, b, log, false)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report, opts.Format)
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	return cmd
}

func printReport(w io.Writer, report *schema.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text":
	default:
		return fmt.Errorf("unknown format %q (allowed: text|json)", format)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKSPACE\tQUESTIONNAIRE\tENTITY\tSTATUS\tDETAIL")
	for _, o := range report.Entities {
		detail := o.Error
		if o.Status == schema.StatusLoaded {
			detail = fmt.Sprintf("%d fields, %d rosters", o.Fields, o.Rosters)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Workspace, o.Key, o.Entity, o.Status, detail)
	}
	for _, ws := range report.Workspaces {
		if ws.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\tworkspace_error\t%s\n", ws.Workspace, ws.Error)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d loaded, %d skipped\n", report.Count(schema.StatusLoaded), len(report.Entities)-report.Count(schema.StatusLoaded))
	return nil
}
