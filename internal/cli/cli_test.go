package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveygraph/internal/schema"
)

const catalogPath = "../catalog/testdata/catalog.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	base := []string{"--driver", "sqlite", "--source", "catalog", "--catalog", catalogPath, "--log-level", "error"}
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDDL_AllIncludesMissingTables(t *testing.T) {
	out, err := run(t, "ddl", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "default_k1"."income$1" (`)
	assert.Contains(t, out, `"default_k1"."income$1_household"`)
}

func TestDDL_WithoutAllSkipsMissingTables(t *testing.T) {
	out, err := run(t, "ddl")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDDL_ApplyThenSchema(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--db", dir, "ddl", "--all", "--apply")
	require.NoError(t, err)
	assert.Equal(t, "applied DDL for 1 entities\n", out)

	out, err = run(t, "--db", dir, "schema", "--format", "json")
	require.NoError(t, err)

	var report schema.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Count(schema.StatusLoaded))

	var loaded []string
	for _, o := range report.Entities {
		if o.Status == schema.StatusLoaded {
			loaded = append(loaded, o.Entity)
		}
	}
	assert.Equal(t, []string{"primary_income_1"}, loaded)

	out, err = run(t, "--db", dir, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "primary_income_1")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "1 loaded, 0 skipped")
}

func TestSchema_ReportsWorkspaceErrors(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "table_missing")
	assert.Contains(t, out, "east")
	assert.Contains(t, out, "north")
	assert.Contains(t, out, "workspace_error")
	assert.NotContains(t, out, "archive")
}

func TestSchema_UnknownFormat(t *testing.T) {
	_, err := run(t, "schema", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCompile(t *testing.T) {
	out, err := run(t, "compile", "--dialect", "postgres", "--limit", "3", "primary_income_1", "{ age }")
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT json_build_object('age', "entity"."age") AS "data" FROM "default_k1"."income$1" AS "entity" LIMIT 3`+"\n",
		out)

	out, err = run(t, "compile", "primary_income_1", "{ age household { member_name } }")
	require.NoError(t, err)
	assert.Contains(t, out, "json_object(")
	assert.Contains(t, out, `"income$1_household"`)
}

func TestCompile_Errors(t *testing.T) {
	_, err := run(t, "compile", "primary_income_1", "{ salary }")
	assert.ErrorContains(t, err, "salary")

	_, err = run(t, "compile", "primary_income_1", "{ age ")
	assert.ErrorContains(t, err, "parse selection")

	_, err = run(t, "compile", "--dialect", "oracle", "primary_income_1", "{ age }")
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = run(t, "compile", "primary_income_1")
	assert.Error(t, err)
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, err := run(t, "--driver", "oracle", "schema")
	assert.ErrorContains(t, err, "unknown driver")
}
