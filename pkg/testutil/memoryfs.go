package testutil

import (
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	"github.com/arthur-debert/repatch/pkg/filesystem"
	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/spf13/afero"
)

// Op names a filesystem operation for error injection
type Op string

const (
	OpStat   Op = "stat"
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpRename Op = "rename"
	OpRemove Op = "remove"
	// OpCreate is keyed on the directory the temp file is created in
	OpCreate Op = "create"
)

type errorKey struct {
	op   Op
	path string
}

// MemoryFS implements types.FS with in-memory storage
type MemoryFS struct {
	Afero afero.Fs

	mu     sync.Mutex
	inner  types.FS
	errors map[errorKey]error

	// Statistics
	writes []string
}

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	mem := afero.NewMemMapFs()
	return &MemoryFS{
		Afero:  mem,
		inner:  filesystem.NewAferoFS(mem),
		errors: make(map[errorKey]error),
	}
}

// WithError makes op on path fail with err. For renames path is the
// destination.
func (m *MemoryFS) WithError(op Op, path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[errorKey{op: op, path: filepath.Clean(path)}] = err
	return m
}

// Writes returns the paths passed to WriteFile, in order
func (m *MemoryFS) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// AddFile creates a file and its parent directories
func (m *MemoryFS) AddFile(t *testing.T, path, content string, perm fs.FileMode) {
	t.Helper()
	if err := m.Afero.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := afero.WriteFile(m.Afero, path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
}

// Content returns a file's content, failing the test if it is missing
func (m *MemoryFS) Content(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(m.Afero, path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// StagingFiles lists the replace staging files left in dir
func (m *MemoryFS) StagingFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := afero.Glob(m.Afero, filepath.Join(dir, "*"+filesystem.TempSuffix))
	if err != nil {
		t.Fatalf("Failed to list staging files in %s: %v", dir, err)
	}
	return matches
}

// Exists reports whether path exists
func (m *MemoryFS) Exists(path string) bool {
	ok, _ := afero.Exists(m.Afero, path)
	return ok
}

func (m *MemoryFS) injected(op Op, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[errorKey{op: op, path: filepath.Clean(path)}]; ok {
		return &fs.PathError{Op: string(op), Path: path, Err: err}
	}
	return nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	if err := m.injected(OpStat, name); err != nil {
		return nil, err
	}
	return m.inner.Stat(name)
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	if err := m.injected(OpRead, name); err != nil {
		return nil, err
	}
	return m.inner.ReadFile(name)
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := m.injected(OpWrite, name); err != nil {
		return err
	}
	m.mu.Lock()
	m.writes = append(m.writes, name)
	m.mu.Unlock()
	return m.inner.WriteFile(name, data, perm)
}

func (m *MemoryFS) CreateTemp(dir, pattern string) (string, error) {
	if err := m.injected(OpCreate, dir); err != nil {
		return "", err
	}
	return m.inner.CreateTemp(dir, pattern)
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	if err := m.injected(OpRename, newpath); err != nil {
		return err
	}
	return m.inner.Rename(oldpath, newpath)
}

func (m *MemoryFS) Remove(name string) error {
	if err := m.injected(OpRemove, name); err != nil {
		return err
	}
	return m.inner.Remove(name)
}

func (m *MemoryFS) Chmod(name string, mode fs.FileMode) error {
	return m.inner.Chmod(name, mode)
}

func (m *MemoryFS) EvalSymlinks(name string) (string, error) {
	if err := m.injected(OpStat, name); err != nil {
		return "", err
	}
	return m.inner.EvalSymlinks(name)
}
