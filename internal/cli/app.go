package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"surveygraph/internal/catalog"
	"surveygraph/internal/config"
	"surveygraph/internal/pg"
	"surveygraph/internal/query"
	"surveygraph/internal/questionnaire"
	"surveygraph/internal/schema"
	"surveygraph/internal/sqlite"
	"surveygraph/internal/store"
)

// backend: открытое хранилище и всё, что зависит от драйвера.
type backend struct {
	db       *sql.DB
	tables   schema.TableChecker
	classify store.Classifier
	dialect  query.Dialect
	hq       *pg.HQSource
	ddl      func(reg *schema.Registry) (string, error)
	apply    func(ctx context.Context, reg *schema.Registry) error
	close    func() error
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pg.Open(cfg.Database.URL, pg.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		hq := pg.NewHQSource(db)
		return &backend{
			db:       db,
			tables:   hq,
			classify: pg.Classify,
			dialect:  query.Postgres,
			hq:       hq,
			ddl: func(reg *schema.Registry) (string, error) {
				ddl, err := pg.GenerateDDL(reg)
				if err != nil {
					return "", err
				}
				return pg.DDLScript(ddl), nil
			},
			apply: func(ctx context.Context, reg *schema.Registry) error {
				ddl, err := pg.GenerateDDL(reg)
				if err != nil {
					return err
				}
				return pg.ApplyDDL(ctx, db, ddl, log)
			},
			close: db.Close,
		}, nil

	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return &backend{
			db:       st.DB,
			tables:   st,
			classify: sqlite.Classify,
			dialect:  query.SQLite,
			ddl: func(reg *schema.Registry) (string, error) {
				stmts, err := sqlite.GenerateDDL(reg)
				if err != nil || len(stmts) == 0 {
					return "", err
				}
				return strings.Join(stmts, ";\n") + ";\n", nil
			},
			apply: st.CreateTables,
			close: st.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
}

func openSource(cfg *config.Config, b *backend) (schema.Source, error) {
	switch cfg.Metadata.Source {
	case "hq":
		if b.hq == nil {
			return nil, fmt.Errorf("metadata source hq needs the postgres driver")
		}
		return b.hq, nil
	case "catalog":
		c, err := catalog.Load(cfg.Metadata.Catalog)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown metadata source: %s", cfg.Metadata.Source)
}

// anyTable: проверка таблиц отключена, в реестр попадают все
// корректные анкеты. Нужна командам compile и ddl --all.
type anyTable struct{}

func (anyTable) TableExists(context.Context, string, string) (bool, error) { return true, nil }

// bootstrap строит реестр и прогоняет lint. Находки lint фатальны.
func bootstrap(ctx context.Context, cfg *config.Config, b *backend, log *zap.Logger, assumeTables bool) (*schema.Registry, *schema.Report, error) {
	src, err := openSource(cfg, b)
	if err != nil {
		return nil, nil, err
	}
	tables := b.tables
	if assumeTables {
		tables = anyTable{}
	}
	bs := &schema.Bootstrapper{
		Source:   src,
		Tables:   tables,
		Parse:    questionnaire.Parse,
		ParseKey: questionnaire.ParseKey,
		Log:      log,
	}
	reg, report, err := bs.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	if issues := schema.Lint(reg); len(issues) > 0 {
		for _, it := range issues {
			log.Error("schema lint", zap.String("type", it.Type), zap.String("field", it.Field),
				zap.String("code", it.Code), zap.String("message", it.Message))
		}
		return nil, nil, fmt.Errorf("schema has %d blocking issues", len(issues))
	}
	return reg, report, nil
}
