package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLinesMissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestReadLinesKeepsBlankLinesAndStripsCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\r\n\nb"), 0o644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, lines)
}

func TestReadLinesHasNoLengthCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	long := strings.Repeat("z", MaxLineSize+10)
	require.NoError(t, os.WriteFile(path, []byte("a\n"+long+"\nb\n"), 0o644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, long, lines[1])

	assert.NoError(t, CheckLine(lines[0]))
	assert.ErrorIs(t, CheckLine(lines[1]), ErrLineTooLong)
	assert.Equal(t, "a", Excerpt("a"))
	assert.Len(t, Excerpt(long), 83)
}

func TestAppendLinesCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "f.txt")
	require.NoError(t, AppendLines(path, []string{"one"}))
	require.NoError(t, AppendLines(path, []string{"two", "three"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))
}

func TestWriteLinesAtomicReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, WriteLinesAtomic(path, []string{"new", "lines"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\nlines\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestWriteLinesAtomicEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, WriteLinesAtomic(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
