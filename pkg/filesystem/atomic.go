package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/repatch/pkg/types"
)

// TempSuffix ends the name of every staging file of a replace
const TempSuffix = ".repatch-tmp"

// ReplaceFile writes data to a staging file next to name and renames it over
// name, so readers never observe a half-written file. A symlink is followed
// and the file it points to is replaced. A file without the owner write bit
// is refused with fs.ErrPermission. The staging file is removed when any
// step fails.
func ReplaceFile(fsys types.FS, name string, data []byte, perm fs.FileMode) error {
	target, err := fsys.EvalSymlinks(name)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		target = name
	default:
		return fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	info, err := fsys.Stat(target)
	switch {
	case err == nil:
		if info.Mode().Perm()&0200 == 0 {
			return &fs.PathError{Op: "write", Path: target, Err: fs.ErrPermission}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	tmp, err := fsys.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("failed to create staging file for %s: %w", target, err)
	}
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to write staging file %s: %w", tmp, err)
	}
	if err := fsys.Chmod(tmp, perm); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to set mode of staging file %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, target); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to move staging file over %s: %w", target, err)
	}
	return nil
}
