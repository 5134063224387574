package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"surveygraph/internal/schema"
)

const exportKeySetting = "ExportService.ApiKey"

// HQSource читает рабочие пространства и документы анкет из базы сервера
// анкет: workspaces.workspaces и схемы ws_<name>.
type HQSource struct {
	db *sql.DB
}

func NewHQSource(db *sql.DB) *HQSource {
	return &HQSource{db: db}
}

// Workspaces: активные (не отключённые) пространства.
func (s *HQSource) Workspaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM workspaces.workspaces WHERE disabled_at_utc IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// имя пространства попадает в имя схемы, поэтому проверяем его
func workspaceSchema(ws string) (string, error) {
	if !schema.ValidIdentifier(ws) {
		return "", fmt.Errorf("workspace name %q is not a valid identifier", ws)
	}
	return sqlIdent("ws_" + ws), nil
}

// ExportKey: ключ сервиса экспорта из ws_<name>.appsettings (поле Key в JSON value).
func (s *HQSource) ExportKey(ctx context.Context, ws string) (string, error) {
	wsSchema, err := workspaceSchema(ws)
	if err != nil {
		return "", err
	}
	var raw []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM `+wsSchema+`.appsettings WHERE id = $1`, exportKeySetting).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("workspace %q has no %s setting", ws, exportKeySetting)
	}
	if err != nil {
		return "", err
	}

	var setting struct {
		Key string `json:"Key"`
	}
	if err := json.Unmarshal(raw, &setting); err != nil {
		return "", fmt.Errorf("workspace %q: %s: %w", ws, exportKeySetting, err)
	}
	if setting.Key == "" {
		return "", fmt.Errorf("workspace %q: empty export key", ws)
	}
	return setting.Key, nil
}

// Questionnaires: все версии документов анкет пространства.
func (s *HQSource) Questionnaires(ctx context.Context, ws string) ([]schema.RawQuestionnaire, error) {
	wsSchema, err := workspaceSchema(ws)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, value FROM `+wsSchema+`.questionnairedocuments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.RawQuestionnaire
	for rows.Next() {
		var q schema.RawQuestionnaire
		if err := rows.Scan(&q.Key, &q.Document); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// TableExists проверяет таблицу через information_schema.
func (s *HQSource) TableExists(ctx context.Context, schemaName, table string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		schemaName, table).Scan(&exists)
	return exists, err
}
