package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/denorm"
)

const conventionGraph = `{
  "stories": [
    {"id": "story-1", "title": "First", "author": {"person": "person-1"}},
    {"id": "story-2", "title": "Second", "author": {"person": "person-2"}}
  ],
  "people": [
    {"id": "person-1", "name": "Ann", "stories": ["story-1", "story-9"]},
    {"id": "person-2", "name": "Bob", "stories": ["story-2"]}
  ],
  "scores": [
    {"id": 7, "value": 1.5}
  ]
}`

const referenceGraph = `{
  "stories": [{"id": "story-1", "author": {"$ref": "people", "id": "person-1"}}],
  "people": [{"id": "person-1", "name": "Ann"}]
}`

// run executes the CLI with args and an empty config file.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	conf := filepath.Join(dir, "denorm.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("logging:\n  level: info\n"), 0o644))

	cfgFile, cfg = "", nil
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", conf}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPopulateConvention(t *testing.T) {
	graph := writeFile(t, "graph.json", conventionGraph)

	for _, strategy := range []string{"lazy", "eager"} {
		t.Run(strategy, func(t *testing.T) {
			stdout, _, err := run(t, "populate", "--graph", graph,
				"--collection", "people", "--id", "person-1", "--depth", "1", "--strategy", strategy)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, map[string]any{
				"id":   "person-1",
				"name": "Ann",
				"stories": []any{
					map[string]any{"id": "story-1", "title": "First", "author": map[string]any{"person": "person-1"}},
				},
			}, got)
		})
	}
}

func TestPopulateReferenceYAML(t *testing.T) {
	graph := writeFile(t, "graph.json", referenceGraph)

	stdout, _, err := run(t, "populate", "--graph", graph, "--mode", "reference",
		"--collection", "stories", "--id", "story-1", "--depth", "2", "-o", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, map[string]any{"id": "person-1", "name": "Ann"}, got["author"])
}

func TestPopulateCollectionWithStats(t *testing.T) {
	graph := writeFile(t, "graph.json", conventionGraph)

	stdout, stderr, err := run(t, "populate", "--graph", graph, "--collection", "people", "--stats")
	require.NoError(t, err)

	var got []any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Len(t, got, 2)
	assert.Contains(t, stderr, "lookups=3 misses=1 dropped=1")
}

func TestPopulateNumericID(t *testing.T) {
	graph := writeFile(t, "graph.json", conventionGraph)

	stdout, _, err := run(t, "populate", "--graph", graph, "--collection", "scores", "--id", "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 7, "value": 1.5}`, stdout)
}

func TestPopulateLargeNumericID(t *testing.T) {
	graph := writeFile(t, "graph.yaml", `
events:
  - id: 9007199254740992
    name: first
  - id: 9007199254740993
    name: second
`)

	stdout, _, err := run(t, "populate", "--graph", graph, "--collection", "events", "--id", "9007199254740993", "--depth", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"name": "second"`)
}

func TestPopulateSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "graph.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT)`,
		`CREATE TABLE stories (id TEXT PRIMARY KEY, person TEXT)`,
		`INSERT INTO people VALUES ('person-1', 'Ann')`,
		`INSERT INTO stories VALUES ('story-1', 'person-1')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	stdout, _, err := run(t, "populate", "--driver", "sqlite", "--dsn", dsn,
		"--table", "people", "--table", "stories", "--collection", "stories", "--id", "story-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "story-1", "person": {"id": "person-1", "name": "Ann"}}`, stdout)
}

func TestPopulateErrors(t *testing.T) {
	graph := writeFile(t, "graph.json", conventionGraph)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"populate", "--collection", "people"}, "no graph source"},
		{"no collection", []string{"populate", "--graph", graph}, "--collection is required"},
		{"unknown collection", []string{"populate", "--graph", graph, "--collection", "tags"}, "unknown collection"},
		{"unknown id", []string{"populate", "--graph", graph, "--collection", "people", "--id", "nobody"}, "not found"},
		{"bad mode", []string{"populate", "--graph", graph, "--collection", "people", "--mode", "magic"}, "populate.mode"},
		{"bad depth", []string{"populate", "--graph", graph, "--collection", "people", "--depth", "-1"}, "populate.depth"},
		{"watch without file", []string{"populate", "--driver", "sqlite", "--dsn", "x.db", "--table", "t", "--collection", "t", "--watch"}, "--watch needs --graph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	graph := writeFile(t, "graph.json", `{
  "people": [{"id": "p1"}, {"id": "p1"}, {"id": "p2"}],
  "tags": {"t1": {"id": "t1"}},
  "empty": []
}`)

	stdout, _, err := run(t, "validate", "--graph", graph)
	require.NoError(t, err)
	assert.Contains(t, stdout, "people")
	assert.Contains(t, stdout, "sequence")
	assert.Contains(t, stdout, "duplicate ids: [p1]")
	assert.Contains(t, stdout, "keyed")
	assert.Contains(t, stdout, "3 collections OK")
}

func TestValidateRejectsMalformedGraph(t *testing.T) {
	graph := writeFile(t, "graph.yaml", "people: 42\nstories:\n  - not an entity\n")

	stdout, _, err := run(t, "validate", "--graph", graph)
	require.Error(t, err)
	assert.True(t, denorm.IsInvalidCollectionShape(err))
	assert.Contains(t, stdout, "invalid")
}
