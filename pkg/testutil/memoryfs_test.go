package testutil

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/arthur-debert/repatch/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFSErrorInjection(t *testing.T) {
	boom := errors.New("boom")
	m := NewMemoryFS().WithError(OpWrite, "/a.txt", boom)

	err := m.WriteFile("/a.txt", []byte("x"), 0644)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "write", pathErr.Op)

	require.NoError(t, m.WriteFile("/b.txt", []byte("y"), 0644))
	assert.Equal(t, []string{"/b.txt"}, m.Writes())
	assert.Equal(t, "y", m.Content(t, "/b.txt"))
	assert.False(t, m.Exists("/a.txt"))
}

func TestMemoryFSCreateTemp(t *testing.T) {
	m := NewMemoryFS()
	m.AddFile(t, "/work/a.txt", "x", 0644)

	name, err := m.CreateTemp("/work", ".a.txt.*"+filesystem.TempSuffix)
	require.NoError(t, err)
	assert.True(t, m.Exists(name))
	assert.Equal(t, []string{name}, m.StagingFiles(t, "/work"))

	m.WithError(OpCreate, "/locked", fs.ErrPermission)
	_, err = m.CreateTemp("/locked", "x.*")
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestMemoryFSAddFile(t *testing.T) {
	m := NewMemoryFS()
	m.AddFile(t, "/work/nodes/x.ts", "hello", 0600)

	info, err := m.Stat("/work/nodes/x.ts")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), info.Mode().Perm())

	data, err := m.ReadFile("/work/nodes/x.ts")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestNvidiaNimFixtures(t *testing.T) {
	src := NvidiaNimSource()
	patched := NvidiaNimPatched()

	assert.NotContains(t, src, NvidiaNimBaseURL)
	for _, call := range NvidiaNimCalls {
		assert.Contains(t, src, "method: '"+call[0]+"',\n\t\t\t\t\t\turl: '"+call[1]+"',")
		assert.Contains(t, patched, NvidiaNimBaseURL+"\n\t\t\t\t\turl: '"+call[1]+"',")
	}
}
