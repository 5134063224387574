package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"surveygraph/internal/schema"
)

// Catalog: файловый источник рабочих пространств и анкет для работы
// без HQ, например поверх каталога SQLite-экспорта.
type Catalog struct {
	workspaces map[string]Workspace
	order      []string
}

// Load читает каталог. path может быть файлом со списком workspaces
// или папкой, где каждый *.yaml/*.yml описывает одно пространство
// (имя берётся из name или из имени файла).
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	c := &Catalog{workspaces: make(map[string]Workspace)}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, ws := range f.Workspaces {
			ws.dir = filepath.Dir(path)
			if err := c.add(ws); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		return c, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		full := filepath.Join(path, name)
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		var ws Workspace
		if err := yaml.Unmarshal(data, &ws); err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		if ws.Name == "" {
			ws.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		ws.dir = path
		if err := c.add(ws); err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
	}
	return c, nil
}

func (c *Catalog) add(ws Workspace) error {
	if !schema.ValidIdentifier(ws.Name) {
		return fmt.Errorf("workspace name %q is not a valid identifier", ws.Name)
	}
	if _, dup := c.workspaces[ws.Name]; dup {
		return fmt.Errorf("workspace %q declared twice", ws.Name)
	}
	c.workspaces[ws.Name] = ws
	c.order = append(c.order, ws.Name)
	return nil
}

// Workspaces: активные пространства, по имени.
func (c *Catalog) Workspaces(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if !c.workspaces[name].Disabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (c *Catalog) ExportKey(ctx context.Context, workspace string) (string, error) {
	ws, ok := c.workspaces[workspace]
	if !ok {
		return "", fmt.Errorf("unknown workspace: %s", workspace)
	}
	if ws.ExportKey == "" {
		return "", fmt.Errorf("workspace %s has no export key", workspace)
	}
	return ws.ExportKey, nil
}

// Questionnaires читает документы с диска. Нечитаемый файл делает
// нерабочим всё пространство, как и сбой выборки в HQ.
func (c *Catalog) Questionnaires(ctx context.Context, workspace string) ([]schema.RawQuestionnaire, error) {
	ws, ok := c.workspaces[workspace]
	if !ok {
		return nil, fmt.Errorf("unknown workspace: %s", workspace)
	}
	out := make([]schema.RawQuestionnaire, 0, len(ws.Questionnaires))
	for _, q := range ws.Questionnaires {
		path := q.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(ws.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("questionnaire %s: %w", q.Key, err)
		}
		out = append(out, schema.RawQuestionnaire{Key: q.Key, Document: data})
	}
	return out, nil
}
