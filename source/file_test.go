package source_test

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/convention"
	"github.com/syssam/denorm/source"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    source.Format
		wantErr bool
	}{
		{"json", source.JSON, false},
		{"", source.JSON, false},
		{"YAML", source.YAML, false},
		{"yml", source.YAML, false},
		{"msgpack", source.MsgPack, false},
		{"mp", source.MsgPack, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := source.ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, denorm.IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	f, err := source.FormatFromPath("dir/graph.yml")
	require.NoError(t, err)
	assert.Equal(t, source.YAML, f)

	_, err = source.FormatFromPath("graph")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("JSON", func(t *testing.T) {
		g, err := source.LoadFile(filepath.Join("testdata", "graph.json"))
		require.NoError(t, err)
		assert.Equal(t, []string{"people", "stories"}, g.Names())
		require.NoError(t, g.Validate())
	})

	t.Run("YAML", func(t *testing.T) {
		g, err := source.LoadFile(filepath.Join("testdata", "graph.yaml"))
		require.NoError(t, err)
		require.NoError(t, g.Validate())

		tags, ok := g["tags"].(map[string]any)
		require.True(t, ok, "non-string keys are normalized, got %T", g["tags"])
		assert.Contains(t, tags, "2")
	})

	t.Run("YAMLAndJSONPopulateAlike", func(t *testing.T) {
		gj, err := source.LoadFile(filepath.Join("testdata", "graph.json"))
		require.NoError(t, err)
		gy, err := source.LoadFile(filepath.Join("testdata", "graph.yaml"))
		require.NoError(t, err)

		pj := gj["people"].([]any)[0]
		py := gy["people"].([]any)[0]
		outJ, err := convention.PopulateEager(3, gj, pj)
		require.NoError(t, err)
		outY, err := convention.PopulateEager(3, gy, py)
		require.NoError(t, err)
		assert.Equal(t, outJ, outY)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := source.LoadFile(filepath.Join("testdata", "nope.json"))
		require.Error(t, err)
		assert.True(t, denorm.IsSourceError(err))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("NotAnObject", func(t *testing.T) {
		_, err := source.LoadFile(filepath.Join("testdata", "list.json"))
		require.Error(t, err)
		assert.True(t, denorm.IsSourceError(err))
		assert.Contains(t, err.Error(), "want an object of collections")
	})
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	g, err := source.LoadFile(filepath.Join("testdata", "graph.json"))
	require.NoError(t, err)
	root := g["people"].([]any)[0]

	lazy, err := convention.PopulateLazy(2, g, root)
	require.NoError(t, err)
	eager, err := convention.PopulateEager(2, g, root)
	require.NoError(t, err)

	for _, f := range []source.Format{source.JSON, source.YAML, source.MsgPack} {
		t.Run(string(f), func(t *testing.T) {
			var fromLazy, fromEager bytes.Buffer
			require.NoError(t, source.Encode(&fromLazy, f, lazy))
			require.NoError(t, source.Encode(&fromEager, f, eager))
			assert.Equal(t, fromEager.Bytes(), fromLazy.Bytes())

			// Wrap the result so it decodes as a graph.
			var doc bytes.Buffer
			require.NoError(t, source.Encode(&doc, f, map[string]any{"people": []any{eager}}))
			back, err := source.Decode(&doc, f)
			require.NoError(t, err)
			person := back["people"].([]any)[0].(map[string]any)
			assert.Equal(t, "John Storywriter", person["name"])
		})
	}
}

func TestEncodeJSONIsIndented(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, source.Encode(&buf, source.JSON, map[string]any{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	err := source.Encode(&buf, source.Format("xml"), nil)
	assert.True(t, denorm.IsConfigError(err))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := source.Decode(strings.NewReader("{not json"), source.JSON)
	require.Error(t, err)
	assert.True(t, denorm.IsSourceError(err))
}
