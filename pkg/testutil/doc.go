// Package testutil provides helpers for testing repatch components.
//
// Key components:
//   - CreateFile / ReadFile / AssertFileContent: real files under t.TempDir()
//   - MemoryFS: an afero-backed types.FS with per-operation error injection
//   - NvidiaNimSource: a target file for the built-in rules
//
// Tests that only need file contents should prefer MemoryFS. Tests that
// check file modes, renames or the command line use real temp dirs.
package testutil
