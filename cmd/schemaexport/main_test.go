package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaexport/internal/config"
	"github.com/tordrt/schemaexport/internal/export"
	"github.com/tordrt/schemaexport/internal/schema"
)

const allTypes = "../../testdata/alltypes.yaml"

const brokenSchema = `
classes:
  - name: Item
    primaryKey: price
    properties:
      price: double
      owner: Ghost?
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvSource, "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeBroken(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(brokenSchema), 0644))
	return path
}

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name       string
		tablesStr  string
		wantTables []string
	}{
		{
			name:       "single table",
			tablesStr:  "users",
			wantTables: []string{"users"},
		},
		{
			name:       "multiple tables",
			tablesStr:  "users,posts,comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "tables with spaces",
			tablesStr:  "users, posts, comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "empty string",
			tablesStr:  "",
			wantTables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTables, parseTableList(tt.tablesStr))
		})
	}
}

func TestExportCommand(t *testing.T) {
	out, err := execute(t, "export", allTypes)
	require.NoError(t, err)
	assert.True(t, export.IsDocument([]byte(out)))
	assert.Equal(t, export.FormatJSON, export.Detect([]byte(out)))

	path := filepath.Join(t.TempDir(), "schema.yaml")
	out, err = execute(t, "export", allTypes, "--format", "yaml", "--output", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := export.Deserialize(data, export.FormatYAML)
	require.NoError(t, err)
	assert.Len(t, doc.Classes, 7)
}

func TestExportCommandUnknownFormat(t *testing.T) {
	_, err := execute(t, "export", allTypes, "--format", "xml")
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))
}

func TestDocsCommand(t *testing.T) {
	out, err := execute(t, "docs", allTypes, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "CLASS IndexedTypes (PK: intIndexed)")
	assert.Contains(t, out, "EMBEDDED CLASS ChildEmbeddedType")

	dir := filepath.Join(t.TempDir(), "docs")
	_, err = execute(t, "docs", allTypes, "--output-dir", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "_overview.md"))
	assert.FileExists(t, filepath.Join(dir, "LinkTypes.md"))
}

func TestDocsCommandConflictingOutputs(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "docs", allTypes, "--output-dir", dir, "--output", filepath.Join(dir, "x.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use both")
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", allTypes, "--lang", "swift,ts", "--output-dir", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		filepath.Join(dir, "alltypes-model.swift"),
		filepath.Join(dir, "alltypes-model.ts"),
	}, lines)
	for _, p := range lines {
		assert.FileExists(t, p)
	}
}

func TestGenerateCommandNeedsLanguage(t *testing.T) {
	_, err := execute(t, "generate", allTypes, "--output-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no language given")
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check", allTypes)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+allTypes+": 7 classes, 8 links\n", out)

	broken := writeBroken(t)
	out, err = execute(t, "check", allTypes, broken)
	assert.True(t, errors.Is(err, errCheckFailed))
	assert.Contains(t, out, "✗ "+broken+": 2 problems")
	assert.Contains(t, out, "    Item.price: invalid primary key type: double is not admissible as a key")
	assert.Contains(t, out, "    Item.owner: unsupported type")
}

func TestCheckCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestConfigFileSuppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "schemaexport.yaml")
	abs, err := filepath.Abs(allTypes)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, []byte("source: "+abs+"\nformat: yaml\n"), 0644))

	out, err := execute(t, "export", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, export.FormatYAML, export.Detect([]byte(out)))
	assert.True(t, export.IsDocument([]byte(out)))
}

func TestRenderReport(t *testing.T) {
	t.Run("single problem", func(t *testing.T) {
		var buf bytes.Buffer
		err := &schema.ValidationErrors{Errors: []*schema.ValidationError{
			{Kind: schema.ErrDanglingReference, Class: "Item", Property: "owner", Detail: "no class named Ghost"},
		}}
		ok := renderReport(&buf, "models/", nil, err, false)
		assert.False(t, ok)
		assert.Equal(t, "✗ models/: 1 problem\n    Item.owner: dangling reference: no class named Ghost\n", buf.String())
	})

	t.Run("other error", func(t *testing.T) {
		var buf bytes.Buffer
		ok := renderReport(&buf, "sqlite://x.db", nil, errors.New("failed to connect"), false)
		assert.False(t, ok)
		assert.Equal(t, "✗ sqlite://x.db: failed to connect\n", buf.String())
	})
}
