// Package filesystem provides filesystem implementations for repatch.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and afero-backed filesystems
// used by tests, plus the atomic replace used when saving a target.
package filesystem
