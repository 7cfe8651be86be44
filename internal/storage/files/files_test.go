package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndRemove(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	key, err := store.Save(strings.NewReader("file body"), "license.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "license")

	data, err := os.ReadFile(filepath.Join(store.dir, key))
	require.NoError(t, err)
	assert.Equal(t, "file body", string(data))

	require.NoError(t, store.Remove(key))
	_, err = os.Stat(filepath.Join(store.dir, key))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	require.NoError(t, store.Remove(key))
}
