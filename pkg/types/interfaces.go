package types

import (
	"io/fs"
)

// FS is the filesystem surface the patcher needs. Implementations live in
// pkg/filesystem.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// CreateTemp creates a new empty file in dir and returns its name. The
	// last "*" in pattern is replaced by a random string.
	CreateTemp(dir, pattern string) (string, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	Chmod(name string, mode fs.FileMode) error

	// EvalSymlinks returns name with symbolic links resolved
	EvalSymlinks(name string) (string, error)
}
