package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TxtFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nworld"), 0644))

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", doc.Source)
	assert.Equal(t, "hello\nworld", doc.Text)
}

func TestLoad_MarkdownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readme.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody"), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", doc.Text)
}

func TestLoad_UnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
