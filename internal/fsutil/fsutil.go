// SPDX-License-Identifier: MPL-2.0

// Package fsutil provides the file and directory copy primitives used to
// populate a staging tree. All functions operate on an afero.Fs so callers
// can substitute an in-memory filesystem in tests.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// DirPerm is the permission used for directories created by this package.
	DirPerm os.FileMode = 0o755
	// FilePerm is the permission of copied files. Source permissions are not
	// carried over so a re-run can always overwrite its own output.
	FilePerm os.FileMode = 0o644
)

// CopyFile copies src to dst, replacing any existing dst.
func CopyFile(fsys afero.Fs, src, dst string) (err error) {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	// A read-only dst left by an earlier copy can't be truncated in place.
	if dstInfo, statErr := fsys.Stat(dst); statErr == nil && !dstInfo.IsDir() && dstInfo.Mode().Perm()&0o200 == 0 {
		if err := fsys.Remove(dst); err != nil {
			return fmt.Errorf("failed to replace %s: %w", dst, err)
		}
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePerm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// CopyTree merges the directory tree rooted at src into dst, preserving
// relative paths. Missing directories are created and existing files are
// overwritten, so copying the same tree twice leaves dst unchanged.
// Symbolic links are followed; a link back into a directory being copied
// is an error.
func CopyTree(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}
	return copyDir(fsys, src, dst, map[string]struct{}{realPath(src): {}})
}

func copyDir(fsys afero.Fs, src, dst string, active map[string]struct{}) error {
	if err := fsys.MkdirAll(dst, DirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}

	entries, err := afero.ReadDir(fsys, src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}

	for _, entry := range entries {
		path := filepath.Join(src, entry.Name())
		target := filepath.Join(dst, entry.Name())

		info := entry
		if info.Mode()&fs.ModeSymlink != 0 {
			if info, err = fsys.Stat(path); err != nil {
				return fmt.Errorf("failed to follow link %s: %w", path, err)
			}
		}

		if !info.IsDir() {
			if err := CopyFile(fsys, path, target); err != nil {
				return fmt.Errorf("failed to copy %s: %w", path, err)
			}
			continue
		}

		resolved := realPath(path)
		if _, cycle := active[resolved]; cycle {
			return fmt.Errorf("failed to copy %s: symbolic link cycle", path)
		}
		active[resolved] = struct{}{}
		err := copyDir(fsys, path, target, active)
		delete(active, resolved)
		if err != nil {
			return err
		}
	}
	return nil
}

// realPath resolves symbolic links in path. Paths that can't be resolved,
// such as those of an in-memory filesystem, are returned cleaned.
func realPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
