package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/spf13/afero"
)

var errTooManyLinks = errors.New("too many levels of symbolic links")

// aferoFS implements types.FS using afero
type aferoFS struct {
	fs afero.Fs
}

// NewAferoFS creates a new afero filesystem implementation
func NewAferoFS(fs afero.Fs) types.FS {
	return &aferoFS{fs: fs}
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() types.FS {
	return NewAferoFS(afero.NewMemMapFs())
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

func (a *aferoFS) CreateTemp(dir, pattern string) (string, error) {
	f, err := afero.TempFile(a.fs, dir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = a.fs.Remove(name)
		return "", err
	}
	return name, nil
}

func (a *aferoFS) Rename(oldpath, newpath string) error {
	return a.fs.Rename(oldpath, newpath)
}

func (a *aferoFS) Remove(name string) error {
	return a.fs.Remove(name)
}

func (a *aferoFS) Chmod(name string, mode fs.FileMode) error {
	return a.fs.Chmod(name, mode)
}

// maxLinkHops bounds symlink resolution so a link cycle ends in an error
const maxLinkHops = 255

// EvalSymlinks follows links in the final path element. Backends without
// symlink support return name as is once it exists.
func (a *aferoFS) EvalSymlinks(name string) (string, error) {
	lstater, canLstat := a.fs.(afero.Lstater)
	reader, canRead := a.fs.(afero.LinkReader)

	current := filepath.Clean(name)
	for hop := 0; hop < maxLinkHops; hop++ {
		if !canLstat || !canRead {
			if _, err := a.fs.Stat(current); err != nil {
				return "", err
			}
			return current, nil
		}
		info, _, err := lstater.LstatIfPossible(current)
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return current, nil
		}
		dest, err := reader.ReadlinkIfPossible(current)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(current), dest)
		}
		current = filepath.Clean(dest)
	}
	return "", &fs.PathError{Op: "evalsymlinks", Path: name, Err: errTooManyLinks}
}
