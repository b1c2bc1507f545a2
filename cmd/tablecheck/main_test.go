package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/amp-labs/amp-tablecheck/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run swaps the process-wide slog default, so these tests are not parallel.

const testSchema = `age:
  expected_type: integer
  required: true
  min_value: 0
  max_value: 120
name:
  expected_type: text
  nullable: false
`

type result struct {
	code   int
	stdout string
	stderr string
}

func hermetic(t *testing.T) context.Context {
	t.Helper()

	ctx := config.WithOverride(t.Context(), config.KeyOtelEnabled, "false")
	ctx = config.WithOverride(ctx, config.KeyRaiseOnError, "false")
	ctx = config.WithOverride(ctx, "LOG_LEVEL", "error")

	return ctx
}

func invoke(t *testing.T, args ...string) result {
	t.Helper()

	return invokeWith(t, hermetic(t), args...)
}

func invokeWith(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(ctx, args, &stdout, &stderr)

	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func fixtures(t *testing.T) (schemaPath, goodCSV, badCSV string) {
	t.Helper()

	dir := t.TempDir()

	return writeFile(t, dir, "schema.yaml", testSchema),
		writeFile(t, dir, "good.csv", "age,name\n30,alice\n41,bob\n"),
		writeFile(t, dir, "bad.csv", "age,name\n-1,alice\n150,\n")
}

func TestValidateCommand(t *testing.T) { //nolint:paralleltest
	schemaPath, good, bad := fixtures(t)

	t.Run("valid table", func(t *testing.T) {
		res := invoke(t, "validate", "--schema", schemaPath, "--data", good)
		assert.Equal(t, exitValid, res.code, res.stderr)
		assert.Contains(t, res.stdout, "✓ validation passed")
		assert.Contains(t, res.stdout, "2 rows · 2 columns · no violations")
	})

	t.Run("invalid table", func(t *testing.T) {
		res := invoke(t, "validate", "-s", schemaPath, "-d", bad)
		assert.Equal(t, exitInvalid, res.code)
		assert.Contains(t, res.stdout, "✗ validation failed")
		assert.Contains(t, res.stdout, "Column 'age': [min_value] values must be >= 0 (Sample: [-1])")
		assert.Contains(t, res.stdout, "Column 'age': [max_value] values must be <= 120 (Sample: [150])")
		assert.Contains(t, res.stdout, "Column 'name': [nullability]")
		assert.NotContains(t, res.stderr, "Error:")
	})

	t.Run("json report", func(t *testing.T) {
		res := invoke(t, "validate", "-s", schemaPath, "-d", bad, "--format", "json")
		assert.Equal(t, exitInvalid, res.code)

		var report struct {
			Valid      bool `json:"is_valid"`
			Rows       int  `json:"rows"`
			Violations []struct {
				Column string `json:"column"`
				Type   string `json:"validation_type"`
			} `json:"violations"`
		}

		require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
		assert.False(t, report.Valid)
		assert.Equal(t, 2, report.Rows)
		require.NotEmpty(t, report.Violations)
		assert.Equal(t, "name", report.Violations[0].Column)
		assert.Equal(t, "nullability", report.Violations[0].Type)
	})

	t.Run("raise prints the error summary", func(t *testing.T) {
		res := invoke(t, "validate", "-s", schemaPath, "-d", bad, "--raise", "--concurrency", "4")
		assert.Equal(t, exitInvalid, res.code)
		assert.Contains(t, res.stderr, "Error: data validation failed:")
	})

	t.Run("delimited text with options", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "semi.txt", "age;name\n30;alice\n-;bob\n")

		res := invoke(t, "validate", "-s", schemaPath, "-d", path,
			"--delimiter", ";", "--null-token", "-", "--sample-size", "1")
		assert.Equal(t, exitValid, res.code, res.stdout+res.stderr)
	})
}

func TestValidateCommandNullTokensFromEnv(t *testing.T) { //nolint:paralleltest
	schemaPath, _, _ := fixtures(t)
	data := writeFile(t, t.TempDir(), "dashes.csv", "age,name\n30,alice\n-,bob\n")

	// "-" makes age a text column unless it reads as null.
	res := invoke(t, "validate", "-s", schemaPath, "-d", data)
	assert.Equal(t, exitInvalid, res.code)
	assert.Contains(t, res.stdout, "[data_type]")

	ctx := config.WithOverride(hermetic(t), config.KeyNullTokens, "-,?")

	res = invokeWith(t, ctx, "validate", "-s", schemaPath, "-d", data)
	assert.Equal(t, exitValid, res.code, res.stdout+res.stderr)
}

func TestValidateCommandSQLite(t *testing.T) { //nolint:paralleltest
	schemaPath, _, _ := fixtures(t)
	dbPath := filepath.Join(t.TempDir(), "people.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)

	_, err = db.ExecContext(t.Context(), `CREATE TABLE people (age INTEGER, name TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(t.Context(), `INSERT INTO people VALUES (30, 'alice'), (200, 'bob')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	res := invoke(t, "validate", "-s", schemaPath, "--sqlite", dbPath, "--query", "SELECT age, name FROM people")
	assert.Equal(t, exitInvalid, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[max_value] values must be <= 120 (Sample: [200])")
}

func TestValidateCommandUsageErrors(t *testing.T) { //nolint:paralleltest
	schemaPath, good, _ := fixtures(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing schema flag", []string{"validate", "-d", good}, "required flag"},
		{"no source", []string{"validate", "-s", schemaPath}, errNoSource.Error()},
		{"two sources", []string{"validate", "-s", schemaPath, "-d", good, "--sqlite", "x.db"}, errNoSource.Error()},
		{"sqlite without query", []string{"validate", "-s", schemaPath, "--sqlite", "x.db"}, errNoQuery.Error()},
		{"bad format", []string{"validate", "-s", schemaPath, "-d", good, "--format", "xml"}, "unsupported format"},
		{"bad delimiter", []string{"validate", "-s", schemaPath, "-d", good, "--delimiter", ";;"}, errDelimiter.Error()},
		{"missing data file", []string{"validate", "-s", schemaPath, "-d", good + ".missing.csv"}, "loading table"},
		{"missing schema file", []string{"validate", "-s", schemaPath + ".yaml", "-d", good}, "loading schema"},
		{"unknown flag", []string{"validate", "--bogus"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := invoke(t, tt.args...)
			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestDebugLogging(t *testing.T) { //nolint:paralleltest
	schemaPath, good, _ := fixtures(t)
	ctx := config.WithOverride(hermetic(t), "LOG_LEVEL", "debug")

	t.Run("commands log under their own subsystem", func(t *testing.T) {
		res := invokeWith(t, ctx, "validate", "-s", schemaPath, "-d", good)
		assert.Equal(t, exitValid, res.code, res.stderr)
		assert.Contains(t, res.stderr, "subsystem=tablecheck.validate")
		assert.Contains(t, res.stderr, "subsystem=tableio")
	})

	t.Run("load errors log their annotations", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "absent.csv.gz")

		res := invokeWith(t, ctx, "validate", "-s", schemaPath, "-d", missing)
		assert.Equal(t, exitUsage, res.code)
		assert.Contains(t, res.stderr, `msg="command failed"`)
		assert.Contains(t, res.stderr, "path="+missing)
		assert.Contains(t, res.stderr, "compression=gzip")
	})
}

func TestSchemaCommands(t *testing.T) { //nolint:paralleltest
	schemaPath, _, _ := fixtures(t)

	t.Run("check", func(t *testing.T) {
		res := invoke(t, "schema", "check", "-s", schemaPath)
		assert.Equal(t, exitValid, res.code, res.stderr)
		assert.Contains(t, res.stdout, "schema ok: 2 columns (age, name)")
		assert.Contains(t, res.stdout, "digest: ")
	})

	t.Run("fmt to toml", func(t *testing.T) {
		res := invoke(t, "schema", "fmt", "-s", schemaPath, "--to", "toml")
		assert.Equal(t, exitValid, res.code, res.stderr)
		assert.Contains(t, res.stdout, "[age]")
		assert.Contains(t, res.stdout, `expected_type = "integer"`)

		// The converted schema loads back to the same digest.
		converted := writeFile(t, t.TempDir(), "schema.toml", res.stdout)

		original := invoke(t, "schema", "check", "-s", schemaPath)
		roundTrip := invoke(t, "schema", "check", "-s", converted)
		assert.Equal(t, original.stdout, roundTrip.stdout)
	})

	t.Run("fmt unknown target", func(t *testing.T) {
		res := invoke(t, "schema", "fmt", "-s", schemaPath, "--to", "xml")
		assert.Equal(t, exitUsage, res.code)
	})
}

func TestVersionCommand(t *testing.T) { //nolint:paralleltest
	res := invoke(t, "version")
	assert.Equal(t, exitValid, res.code)
	assert.Contains(t, res.stdout, "tablecheck ")

	res = invoke(t, "version", "--json")
	assert.Equal(t, exitValid, res.code)

	var info map[string]any

	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.NotEmpty(t, info["version"])
}
