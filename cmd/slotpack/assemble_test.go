// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slotpack/slotpack/internal/archive"
	"github.com/slotpack/slotpack/internal/assemble"
	"github.com/slotpack/slotpack/internal/config"
	"github.com/slotpack/slotpack/internal/issue"
	"github.com/slotpack/slotpack/internal/layout"
	"github.com/slotpack/slotpack/internal/testutil"
	"github.com/slotpack/slotpack/pkg/modspec"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestAssembleCommand(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t)

	stdout, _, err := runCLI(t, nil, "assemble", "--manifest", p.Manifest)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	zipPath := filepath.Join(p.BuildDir(), "app-1.0-modules.zip")
	for _, want := range []string{"Module archive assembled", "org.postgresql:main", "org/postgresql/main/postgresql-42.7.jar", "modules"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	entries, err := archive.ListEntries(afero.NewOsFs(), zipPath)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir {
			files = append(files, e.Name)
		}
	}
	want := []string{
		"org/example/app/main/app-1.0.jar",
		"org/example/app/main/module.xml",
		"org/postgresql/main/module.xml",
		"org/postgresql/main/postgresql-42.7.jar",
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("archive files mismatch (-want +got):\n%s", diff)
	}

	ledger, err := assemble.ReadLedger(afero.NewOsFs(), filepath.Join(p.BuildDir(), assemble.DefaultLedgerFileName))
	if err != nil {
		t.Fatalf("ReadLedger() error = %v", err)
	}
	att, ok := ledger.Find("modules")
	if !ok {
		t.Fatalf("ledger has no modules attachment: %+v", ledger)
	}
	if att.Type != "zip" || att.File != zipPath {
		t.Errorf("attachment = %+v", att)
	}

	if _, err := os.Stat(filepath.Join(p.BuildDir(), "modules")); err != nil {
		t.Errorf("staging tree should be kept by default: %v", err)
	}
}

func TestAssembleCommand_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.yaml")

	_, _, err := runCLI(t, nil, "assemble",
		"--manifest", p.Manifest,
		"--category", "common",
		"--ledger", ledgerPath,
		"--keep-staging=false",
	)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(p.BuildDir(), "app-1.0-common-modules.zip")); err != nil {
		t.Errorf("category archive missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(p.BuildDir(), "modules")); !os.IsNotExist(err) {
		t.Errorf("staging tree should be removed, stat err = %v", err)
	}

	ledger, err := assemble.ReadLedger(afero.NewOsFs(), ledgerPath)
	if err != nil {
		t.Fatalf("ReadLedger() error = %v", err)
	}
	if _, ok := ledger.Find("common-modules"); !ok {
		t.Errorf("ledger missing common-modules attachment: %+v", ledger)
	}
}

func TestAssembleCommand_ConfigStagingKeepFalse(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t)
	cfg := config.DefaultConfig()
	cfg.Staging.Keep = false
	cfg.Archive.Compression = config.CompressionStore

	if _, _, err := runCLI(t, cfg, "assemble", "--manifest", p.Manifest); err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(p.BuildDir(), "modules")); !os.IsNotExist(err) {
		t.Errorf("staging tree should be removed, stat err = %v", err)
	}
}

func TestAssembleCommand_SkipsWithoutDescriptors(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t)
	if err := os.RemoveAll(filepath.Join(p.Dir, "src")); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, nil, "assemble", "--manifest", p.Manifest)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if !strings.Contains(stdout, "nothing to assemble") {
		t.Errorf("stdout missing skip notice:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(p.BuildDir(), "app-1.0-modules.zip")); !os.IsNotExist(err) {
		t.Errorf("no archive expected, stat err = %v", err)
	}
}

func TestAssembleCommand_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(t *testing.T, p *testutil.Project)
		args      []string
		wantIssue issue.Id
		wantIs    error
		wantCode  int
	}{
		{
			name: "module not matched",
			mutate: func(t *testing.T, p *testutil.Project) {
				t.Helper()
				testutil.MustWriteFile(t, p.Manifest, `project: {
	group_id:    "org.example"
	artifact_id: "app"
	final_name:  "app-1.0"
	artifact:    "target/app-1.0.jar"
}
modules: [{group_id: "org.missing", artifact_id: "nope", name: "org.missing"}]
`)
			},
			wantIssue: issue.ModuleNotMatchedId,
			wantIs:    layout.ErrArtifactNotFound,
			wantCode:  exitCodeConfiguration,
		},
		{
			name: "artifact file missing",
			mutate: func(t *testing.T, p *testutil.Project) {
				t.Helper()
				testutil.MustWriteFile(t, p.Manifest, `project: {
	group_id:    "org.example"
	artifact_id: "app"
	final_name:  "app-1.0"
}
modules: [{name: "org.example.app"}]
`)
			},
			wantIssue: issue.ArtifactFileMissingId,
			wantIs:    layout.ErrArtifactFileMissing,
			wantCode:  exitCodeConfiguration,
		},
		{
			name:      "invalid category",
			args:      []string{"--category", "a/b"},
			wantIssue: issue.ManifestInvalidId,
			wantIs:    modspec.ErrConfiguration,
			wantCode:  exitCodeConfiguration,
		},
		{
			name: "invalid manifest",
			mutate: func(t *testing.T, p *testutil.Project) {
				t.Helper()
				testutil.MustWriteFile(t, p.Manifest, `project: {group_id: "org.example"}`)
			},
			wantIssue: issue.ManifestInvalidId,
			wantCode:  exitCodeConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := testutil.NewProject(t)
			if tt.mutate != nil {
				tt.mutate(t, p)
			}

			args := append([]string{"assemble", "--manifest", p.Manifest}, tt.args...)
			_, _, err := runCLI(t, nil, args...)
			if err == nil {
				t.Fatal("expected an error")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error %T is not actionable: %v", err, err)
			}
			if ae.Issue != tt.wantIssue {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.wantIssue)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(err, %v) = false: %v", tt.wantIs, err)
			}
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("error %T carries no exit code", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestExplainAssembleError_IO(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{
			name: "archive",
			err:  modspec.NewIOError("create archive", "/tmp/x.zip", errors.New("disk full")),
			want: issue.ArchiveFailedId,
		},
		{
			name: "staging",
			err:  modspec.NewIOError("copy descriptors", "/tmp/modules", errors.New("permission denied")),
			want: issue.StagingFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ae *issue.ActionableError
			if !errors.As(explainAssembleError(tt.err, "slotpack.cue"), &ae) {
				t.Fatal("expected ActionableError")
			}
			if ae.Issue != tt.want {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.want)
			}
			var exitErr *ExitError
			if !errors.As(explainAssembleError(tt.err, "slotpack.cue"), &exitErr) || exitErr.Code != exitCodeFailure {
				t.Errorf("I/O failures should exit with %d", exitCodeFailure)
			}
		})
	}
}

func TestExplainAssembleError_CanceledPassesThrough(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("staging: %w", context.Canceled)
	if got := explainAssembleError(err, "slotpack.cue"); got != err {
		t.Errorf("explainAssembleError() = %v, want the original error", got)
	}
}
