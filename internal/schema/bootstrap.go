package schema

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"surveygraph/internal/metadata"
)

// Workspace: активное рабочее пространство и его ключ экспорта.
type Workspace struct {
	Name      string
	ExportKey string
}

// RawQuestionnaire: документ одной версии анкеты, как он лежит в хранилище.
type RawQuestionnaire struct {
	Key      string // "<id>$<version>"
	Document []byte
}

// Source перечисляет рабочие пространства, их ключи экспорта и документы анкет.
type Source interface {
	Workspaces(ctx context.Context) ([]string, error)
	ExportKey(ctx context.Context, workspace string) (string, error)
	Questionnaires(ctx context.Context, workspace string) ([]RawQuestionnaire, error)
}

// TableChecker проверяет физическое наличие таблицы.
type TableChecker interface {
	TableExists(ctx context.Context, schema, table string) (bool, error)
}

// ParseFunc разбирает сырой документ анкеты.
type ParseFunc func(raw []byte) (*metadata.Document, error)

// KeyFunc делит ключ документа на id и версию.
type KeyFunc func(key string) (id, version string, err error)

// Bootstrapper строит реестр один раз, синхронно, до приёма запросов.
type Bootstrapper struct {
	Source   Source
	Tables   TableChecker
	Parse    ParseFunc
	ParseKey KeyFunc
	Log      *zap.Logger
}

// Run обходит рабочие пространства и версии анкет. Ошибки по отдельной
// сущности или отдельному пространству не прерывают bootstrap: сущность
// пропускается, исход пишется в отчёт. Ошибка возвращается только если
// не удалось получить список пространств.
func (b *Bootstrapper) Run(ctx context.Context) (*Registry, *Report, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	builder := NewBuilder()
	report := &Report{}

	workspaces, err := b.Source.Workspaces(ctx)
	if err != nil {
		log.Error("list workspaces failed", zap.Error(err))
		return nil, nil, fmt.Errorf("list workspaces: %w", err)
	}

	for _, name := range workspaces {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		ws, docs, err := b.workspace(ctx, name)
		if err != nil {
			log.Error("workspace skipped", zap.String("workspace", name), zap.Error(err))
			report.Workspaces = append(report.Workspaces, WorkspaceOutcome{Workspace: name, Error: err.Error()})
			continue
		}
		report.Workspaces = append(report.Workspaces, WorkspaceOutcome{Workspace: name, Questionnaires: len(docs)})

		for _, raw := range docs {
			out := b.load(ctx, builder, ws, raw)
			report.Entities = append(report.Entities, out)
			b.logOutcome(log, out)
		}
	}

	reg := builder.Freeze()
	log.Info("schema bootstrap finished",
		zap.Int("entities", reg.Len()),
		zap.Int("candidates", len(report.Entities)))
	return reg, report, nil
}

func (b *Bootstrapper) workspace(ctx context.Context, name string) (Workspace, []RawQuestionnaire, error) {
	key, err := b.Source.ExportKey(ctx, name)
	if err != nil {
		return Workspace{}, nil, fmt.Errorf("export key: %w", err)
	}
	docs, err := b.Source.Questionnaires(ctx, name)
	if err != nil {
		return Workspace{}, nil, fmt.Errorf("list questionnaires: %w", err)
	}
	return Workspace{Name: name, ExportKey: key}, docs, nil
}

func (b *Bootstrapper) load(ctx context.Context, builder *Builder, ws Workspace, raw RawQuestionnaire) Outcome {
	out := Outcome{Workspace: ws.Name, Key: raw.Key}

	id, version, err := b.ParseKey(raw.Key)
	if err != nil {
		return out.fail(StatusParseError, err)
	}
	doc, err := b.Parse(raw.Document)
	if err != nil {
		return out.fail(StatusParseError, err)
	}

	out.Entity = EntityName(ws.Name, doc.VariableName, version)
	binding := Binding{
		Workspace:       ws.Name,
		QuestionnaireID: id,
		Version:         version,
		Schema:          ExportSchema(ws.Name, ws.ExportKey),
		Table:           TableName(doc.VariableName, version),
	}
	out.Schema, out.Table = binding.Schema, binding.Table

	exists, err := b.Tables.TableExists(ctx, binding.Schema, binding.Table)
	if err != nil {
		return out.fail(StatusStoreError, err)
	}
	if !exists {
		return out.fail(StatusTableMissing, ErrTableNotFound)
	}

	syn, err := Synthesize(out.Entity, doc)
	if err != nil {
		var uvt *metadata.UnknownValueTypeError
		if errors.As(err, &uvt) {
			return out.fail(StatusUnknownValueType, err)
		}
		return out.fail(StatusInvalidMetadata, err)
	}
	if err := builder.Add(syn, binding); err != nil {
		return out.fail(StatusInvalidMetadata, err)
	}
	out.Status = StatusLoaded
	out.Fields = len(syn.Entity.Fields)
	out.Rosters = len(syn.Rosters)
	return out
}

// уровни: loaded -> Info, table_missing -> Debug, дефекты метаданных -> Warn,
// ошибки хранилища -> Error
func (b *Bootstrapper) logOutcome(log *zap.Logger, out Outcome) {
	fields := []zap.Field{
		zap.String("workspace", out.Workspace),
		zap.String("questionnaire", out.Key),
		zap.String("entity", out.Entity),
	}
	switch out.Status {
	case StatusLoaded:
		log.Info("entity loaded", append(fields, zap.Int("fields", out.Fields), zap.Int("rosters", out.Rosters))...)
	case StatusTableMissing:
		log.Debug("entity skipped: table not exported yet", append(fields, zap.String("table", out.Table))...)
	case StatusStoreError:
		log.Error("entity skipped: table check failed", append(fields, zap.String("error", out.Error))...)
	default:
		log.Warn("entity skipped: metadata defect", append(fields, zap.String("status", string(out.Status)), zap.String("error", out.Error))...)
	}
}
