package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReader(t *testing.T) {
	sum, n, err := HashReader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	sum, n, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Len(t, sum, 64)

	_, _, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
