package docval

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docval/text"
	"github.com/hupe1980/docval/value"
)

func nanValue() float64 { return math.NaN() }

func TestFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	doc := sampleDoc()

	require.NoError(t, SaveFile(path, doc, text.Format))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(text.Serialize(doc, text.Format)), string(raw))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, doc.Equal(got))
}

func TestFile_LoadExtended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ext.json")
	require.NoError(t, os.WriteFile(path, []byte("// comment\n{\"a\": 0x1F, \"b\": [1, 2,],}\n"), 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	want := value.Dict(
		value.M("a", value.Int(31)),
		value.M("b", value.List(value.Int(1), value.Int(2))),
	)
	assert.True(t, want.Equal(got), "got %v", got)
}

func TestFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 2"), 0o644))
	_, err = LoadFile(bad)
	var pe *value.ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, value.ErrUnexpectedEOF)
}
