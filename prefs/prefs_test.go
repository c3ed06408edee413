package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_File_MissingFileReadsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), DefaultFileName))

	raw, err := f.IgnoreList()
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func Test_File_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	f := NewFile(path)

	require.NoError(t, f.SetIgnoreList("Plugins, ThirdParty"))

	raw, err := NewFile(path).IgnoreList()
	require.NoError(t, err)
	assert.Equal(t, "Plugins, ThirdParty", raw)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "ignore_folders"))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func Test_File_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("ignore_folders = [unterminated"), 0644))

	_, err := NewFile(path).IgnoreList()
	assert.Error(t, err)
	assert.Error(t, NewFile(path).SetIgnoreList("x"))
}

func Test_Memory_FailWith(t *testing.T) {
	m := NewMemory("Editor")
	raw, err := m.IgnoreList()
	require.NoError(t, err)
	assert.Equal(t, "Editor", raw)

	boom := errors.New("boom")
	m.FailWith(boom)
	assert.ErrorIs(t, m.SetIgnoreList("x"), boom)
	_, err = m.IgnoreList()
	assert.ErrorIs(t, err, boom)
}
