// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/slotpack/slotpack/internal/issue"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Staging.DirName != "modules" || !cfg.Staging.Keep {
		t.Errorf("Staging = %+v, want modules/keep", cfg.Staging)
	}
	if cfg.Archive.Compression != CompressionDeflate {
		t.Errorf("Compression = %q, want deflate", cfg.Archive.Compression)
	}
	if cfg.Ledger.FileName != "slotpack-attachments.yaml" {
		t.Errorf("Ledger.FileName = %q", cfg.Ledger.FileName)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %s, want 500ms", cfg.Watch.Debounce)
	}
	if cfg.UI.Verbose {
		t.Error("UI.Verbose should default to false")
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig().IsValid() = false: %v", errs)
	}
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := LoadWithPath(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wantPath := writeConfig(t, dir, `
log_level: "debug"
staging: keep: false
archive: compression: "store"
watch: {
	debounce: "2s"
	ignore: ["**/*.swp"]
}
`)

	cfg, path, err := LoadWithPath(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if path != wantPath {
		t.Errorf("resolved path = %q, want %q", path, wantPath)
	}

	want := DefaultConfig()
	want.LogLevel = LogLevelDebug
	want.Staging.Keep = false
	want.Archive.Compression = CompressionStore
	want.Watch.Debounce = 2 * time.Second
	want.Watch.Ignore = []string{"**/*.swp"}
	if diff := cmp.Diff(want, cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CustomPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `ledger: file_name: "attached.yaml"`)

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ledger.FileName != "attached.yaml" {
		t.Errorf("Ledger.FileName = %q, want attached.yaml", cfg.Ledger.FileName)
	}
	if cfg.Staging.DirName != "modules" {
		t.Errorf("defaults should survive a partial file, got DirName %q", cfg.Staging.DirName)
	}
}

func TestLoad_CustomPathNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(t.Context(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if ae.Operation != "load configuration" {
		t.Errorf("Operation = %q", ae.Operation)
	}
	if ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("Issue = %v, want ConfigLoadFailedId", ae.Issue)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown log level", `log_level: "trace"`, "log_level"},
		{"unknown compression", `archive: compression: "zstd"`, "archive.compression"},
		{"separator in dir name", `staging: dir_name: "a/b"`, "staging.dir_name"},
		{"bad debounce", `watch: debounce: "soon"`, "watch.debounce"},
		{"unknown field", `colour: "blue"`, "colour"},
		{"syntax error", `log_level: `, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SLOTPACK_ARCHIVE_COMPRESSION", "store")
	t.Setenv("SLOTPACK_STAGING_KEEP", "false")
	t.Setenv("SLOTPACK_WATCH_DEBOUNCE", "250ms")

	dir := t.TempDir()
	writeConfig(t, dir, `archive: compression: "deflate"`)

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Archive.Compression != CompressionStore {
		t.Errorf("env should override file: Compression = %q", cfg.Archive.Compression)
	}
	if cfg.Staging.Keep {
		t.Error("Staging.Keep should be false from env")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %s, want 250ms", cfg.Watch.Debounce)
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("SLOTPACK_LOG_LEVEL", "loud")

	_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.LogLevel = LogLevelWarn
	cfg.Watch.Ignore = []string{"**/.git/**", "*.tmp"}
	cfg.UI.Verbose = true

	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(cfg))

	got, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	if err := os.WriteFile(path, []byte(`log_level: "error"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err = CreateDefaultConfig(dir); err != nil || created {
		t.Errorf("second call: created = %v, err = %v; want existing file kept", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `log_level: "error"` {
		t.Error("existing config file was overwritten")
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}
