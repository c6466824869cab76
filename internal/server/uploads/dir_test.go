package uploads

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStorage_SaveWritesFileUnderDir(t *testing.T) {
	dir := t.TempDir()
	s := NewDirStorage(dir)

	key, err := s.Save(context.Background(), bytes.NewReader([]byte("img-bytes")), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "uploads/"), "key %q", key)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("img-bytes"), data)
}

func TestDirStorage_KeysAreUnique(t *testing.T) {
	s := NewDirStorage(t.TempDir())

	k1, err := s.Save(context.Background(), bytes.NewReader([]byte("a")), "image/png")
	require.NoError(t, err)
	k2, err := s.Save(context.Background(), bytes.NewReader([]byte("b")), "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestGetRandomStorageKey_DatePartitioned(t *testing.T) {
	key := GetRandomStorageKey()
	parts := strings.Split(key, "/")
	require.Len(t, parts, 5)
	assert.Equal(t, "uploads", parts[0])
}
