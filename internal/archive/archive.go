// SPDX-License-Identifier: MPL-2.0

// Package archive writes a directory tree into a single ZIP file and reads
// the entry listing back.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/slotpack/slotpack/internal/fsutil"

	"github.com/spf13/afero"
)

type (
	// TreeArchiver packages every file under root into the archive at dest.
	// Entry names are the slash-separated paths relative to root.
	TreeArchiver interface {
		WriteTree(root, dest string) error
	}

	// ZipArchiver is a TreeArchiver that produces ZIP files.
	ZipArchiver struct {
		// Fs is the filesystem holding both the tree and the destination.
		Fs afero.Fs
		// Method is the compression method for file entries
		// (zip.Deflate when zero).
		Method uint16
	}

	// Entry describes one entry of an existing archive.
	Entry struct {
		Name  string
		Size  uint64
		IsDir bool
	}
)

// NewZipArchiver creates a ZipArchiver using Deflate compression.
func NewZipArchiver(fsys afero.Fs) *ZipArchiver {
	return &ZipArchiver{Fs: fsys, Method: zip.Deflate}
}

// WriteTree walks root in lexical order and writes a directory entry for
// every sub-directory and a compressed entry for every file. A partially
// written archive is removed when the walk fails.
func (z *ZipArchiver) WriteTree(root, dest string) error {
	if err := z.Fs.MkdirAll(filepath.Dir(dest), fsutil.DirPerm); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := z.writeTree(root, dest); err != nil {
		_ = z.Fs.Remove(dest) // Best-effort cleanup of the partial archive
		return err
	}
	return nil
}

func (z *ZipArchiver) writeTree(root, dest string) (err error) {
	zipFile, err := z.Fs.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create ZIP file: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	method := z.Method
	if method == 0 {
		method = zip.Deflate
	}

	walkErr := afero.Walk(z.Fs, root, func(path string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if relPath == "." {
			return nil
		}
		// Use forward slashes for ZIP compatibility
		zipPath := filepath.ToSlash(relPath)

		if info.IsDir() {
			dirHeader := &zip.FileHeader{Name: zipPath + "/", Method: zip.Store, Modified: info.ModTime()}
			dirHeader.SetMode(info.Mode())
			if _, createErr := zipWriter.CreateHeader(dirHeader); createErr != nil {
				return fmt.Errorf("failed to create directory entry: %w", createErr)
			}
			return nil
		}

		// Create file header with proper attributes
		header, headerErr := zip.FileInfoHeader(info)
		if headerErr != nil {
			return fmt.Errorf("failed to create file header: %w", headerErr)
		}

		header.Name = zipPath
		header.Method = method
		writer, writerErr := zipWriter.CreateHeader(header)
		if writerErr != nil {
			return fmt.Errorf("failed to create ZIP entry: %w", writerErr)
		}
		return copyInto(z.Fs, path, writer)
	})
	if walkErr != nil {
		return fmt.Errorf("failed to archive %s: %w", root, walkErr)
	}
	return nil
}

func copyInto(fsys afero.Fs, path string, w io.Writer) (err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}

// ListEntries returns the entries of the ZIP file at path sorted by name.
func ListEntries(fsys afero.Fs, path string) (entries []Entry, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat ZIP file: %w", err)
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read ZIP file: %w", err)
	}

	entries = make([]Entry, 0, len(reader.File))
	for _, zf := range reader.File {
		entries = append(entries, Entry{
			Name:  zf.Name,
			Size:  zf.UncompressedSize64,
			IsDir: zf.FileInfo().IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ReadEntry returns the content of a single file entry.
func ReadEntry(fsys afero.Fs, path, name string) (data []byte, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat ZIP file: %w", err)
	}
	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read ZIP file: %w", err)
	}

	rc, err := reader.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return io.ReadAll(rc)
}
