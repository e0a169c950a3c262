// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func populate(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func fileNames(entries []Entry) []string {
	var names []string
	for _, e := range entries {
		if !e.IsDir {
			names = append(names, e.Name)
		}
	}
	return names
}

func TestZipArchiver_WriteTree(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	populate(t, fsys, map[string]string{
		"/build/modules/org/ovirt/engine/common/main/module.xml":       "<module/>",
		"/build/modules/org/ovirt/engine/common/main/common-4.5.0.jar": "jar-bytes",
		"/build/modules/org/postgresql/main/module.xml":                "<module/>",
	})

	dest := "/build/out/common-4.5.0-modules.zip"
	if err := NewZipArchiver(fsys).WriteTree("/build/modules", dest); err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}

	entries, err := ListEntries(fsys, dest)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}

	wantFiles := []string{
		"org/ovirt/engine/common/main/common-4.5.0.jar",
		"org/ovirt/engine/common/main/module.xml",
		"org/postgresql/main/module.xml",
	}
	if diff := cmp.Diff(wantFiles, fileNames(entries)); diff != "" {
		t.Errorf("file entries mismatch (-want +got):\n%s", diff)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir {
			dirs = append(dirs, e.Name)
		}
	}
	if len(dirs) == 0 || dirs[0] != "org/" {
		t.Errorf("directory entries = %v, want leading %q", dirs, "org/")
	}

	data, err := ReadEntry(fsys, dest, "org/ovirt/engine/common/main/common-4.5.0.jar")
	if err != nil {
		t.Fatalf("ReadEntry() error = %v", err)
	}
	if string(data) != "jar-bytes" {
		t.Errorf("entry content = %q, want %q", data, "jar-bytes")
	}
}

func TestZipArchiver_StoreMethod(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fsys := afero.NewOsFs()
	root := filepath.Join(dir, "modules")
	populate(t, fsys, map[string]string{filepath.Join(root, "a", "module.xml"): "<module name=\"a\"/>"})

	dest := filepath.Join(dir, "a-modules.zip")
	archiver := &ZipArchiver{Fs: fsys, Method: zip.Store}
	if err := archiver.WriteTree(root, dest); err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}

	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == "a/module.xml" && f.Method != zip.Store {
			t.Errorf("entry %s method = %d, want Store", f.Name, f.Method)
		}
	}
}

func TestZipArchiver_MissingRootRemovesArchive(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	dest := "/build/x-modules.zip"
	if err := NewZipArchiver(fsys).WriteTree("/build/missing", dest); err == nil {
		t.Fatal("expected error for missing root")
	}
	if _, err := fsys.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("partial archive left behind: stat error = %v", err)
	}
}

func TestListEntries_NotAZip(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	populate(t, fsys, map[string]string{"/x.zip": "not a zip"})
	if _, err := ListEntries(fsys, "/x.zip"); err == nil {
		t.Error("expected error for invalid archive")
	}
}
