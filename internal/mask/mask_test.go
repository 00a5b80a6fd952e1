package mask

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	means := []float64{-1, 0.5, 2, 2.0000001, 3, 2}
	threshold := 2.0

	m := Build(means, threshold)
	require.Len(t, m, len(means))
	assert.Equal(t, Mask{1, 1, 1, 0, 0, 1}, m)

	for i, v := range m {
		assert.Contains(t, []float64{0, 1}, v)
		assert.Equal(t, means[i] <= threshold, v == 1.0, "location %d", i)
	}

	ones, zeros := m.Count()
	assert.Equal(t, 4, ones)
	assert.Equal(t, 2, zeros)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build(nil, 1))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Mask{1, 0, 0, 1}))
	assert.Equal(t, "1\n0\n0\n1\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub01_scanA_mask.txt")

	require.NoError(t, WriteFile(path, Mask{0, 1, 1}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n1\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allMasks", "sub01_scanA_mask.txt")

	err := WriteFile(path, Mask{1})

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, path, writeErr.Path)

	_, statErr := os.Stat(filepath.Join(dir, "allMasks"))
	assert.True(t, os.IsNotExist(statErr), "directory must not be created")
}
