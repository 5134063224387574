package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveygraph/internal/config"
	"surveygraph/internal/logging"
)

// RootOptions: глобальные флаги. Значения флагов читает config.Load,
// здесь хранится только путь к файлу конфигурации.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand: без подкоманды запускается сервер.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "surveygraph",
		Short:         "Typed graph-query API over survey export tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (YAML or JSON)")
	pf.Int("port", 8080, "HTTP port")
	pf.String("driver", "postgres", "store driver (postgres|sqlite)")
	pf.String("db", "", "database URL; for sqlite a directory of <schema>.db files, empty for in-memory")
	pf.String("source", "hq", "metadata source (hq|catalog)")
	pf.String("catalog", "", "workspace catalog YAML file or directory")
	pf.String("cache", "none", "statement cache (none|memory|redis)")
	pf.String("redis-addr", "localhost:6379", "redis address for the redis cache")
	pf.String("log-level", "info", "log level")
	pf.String("log-format", "console", "log format (console|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewDDLCommand(opts))
	return cmd
}

func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
