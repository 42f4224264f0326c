package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripCreatesDirectories(t *testing.T) {
	store := NewJSON()
	path := filepath.Join(t.TempDir(), "deployments", "mumbai", "RandomWinnerGame.json")

	type record struct {
		Address string `json:"address"`
	}

	require.NoError(t, store.WriteJSON(path, record{Address: "0x01"}))

	exists, err := store.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	var got record
	require.NoError(t, store.ReadJSON(path, &got))
	assert.Equal(t, "0x01", got.Address)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), raw[len(raw)-1])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestReadJSONMissingFile(t *testing.T) {
	store := NewJSON()
	path := filepath.Join(t.TempDir(), "absent.json")

	var target map[string]any
	err := store.ReadJSON(path, &target)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	exists, err := store.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReadJSONInvalidContent(t *testing.T) {
	store := NewJSON()
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, store.WriteBytes(path, []byte("{")))

	var target map[string]any
	err := store.ReadJSON(path, &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}
