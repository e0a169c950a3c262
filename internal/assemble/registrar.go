// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/slotpack/slotpack/internal/fsutil"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultLedgerFileName is the ledger file name under the build directory.
const DefaultLedgerFileName = "slotpack-attachments.yaml"

type (
	// Attachment is a build output registered alongside the project's main artifact.
	Attachment struct {
		Type       string `yaml:"type"`
		Classifier string `yaml:"classifier"`
		File       string `yaml:"file"`
	}

	// Registrar records attached build outputs.
	Registrar interface {
		Attach(ctx context.Context, a Attachment) error
	}

	// RegistrarFunc adapts a function to the Registrar interface.
	RegistrarFunc func(ctx context.Context, a Attachment) error

	// Ledger is the on-disk list of attachments, one per classifier.
	Ledger struct {
		Attachments []Attachment `yaml:"attachments"`
	}

	// LedgerRegistrar records attachments in a YAML ledger file. Registering
	// a classifier that is already present replaces its entry.
	LedgerRegistrar struct {
		fs   afero.Fs
		path string
		mu   sync.Mutex
	}
)

// Attach calls f(ctx, a).
func (f RegistrarFunc) Attach(ctx context.Context, a Attachment) error {
	return f(ctx, a)
}

// NewLedgerRegistrar creates a LedgerRegistrar writing to path.
func NewLedgerRegistrar(fsys afero.Fs, path string) *LedgerRegistrar {
	return &LedgerRegistrar{fs: fsys, path: path}
}

// Path returns the ledger file location.
func (r *LedgerRegistrar) Path() string {
	return r.path
}

// Attach adds or replaces the entry for a.Classifier and rewrites the ledger.
func (r *LedgerRegistrar) Attach(ctx context.Context, a Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(a.File) == "" || strings.TrimSpace(a.Type) == "" {
		return errors.New("attachment requires a type and a file")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, err := ReadLedger(r.fs, r.path)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(ledger.Attachments, func(e Attachment) bool {
		return e.Classifier == a.Classifier
	})
	if idx >= 0 {
		ledger.Attachments[idx] = a
	} else {
		ledger.Attachments = append(ledger.Attachments, a)
	}

	data, err := yaml.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode attachment ledger: %w", err)
	}
	if err := r.fs.MkdirAll(filepath.Dir(r.path), fsutil.DirPerm); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	if err := afero.WriteFile(r.fs, r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write attachment ledger: %w", err)
	}
	return nil
}

// ReadLedger reads the ledger at path. A missing file is an empty ledger.
func ReadLedger(fsys afero.Fs, path string) (*Ledger, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Ledger{}, nil
		}
		return nil, fmt.Errorf("failed to read attachment ledger: %w", err)
	}

	var ledger Ledger
	if err := yaml.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("failed to parse attachment ledger %s: %w", path, err)
	}
	return &ledger, nil
}

// Find returns the attachment registered under classifier.
func (l *Ledger) Find(classifier string) (Attachment, bool) {
	for _, a := range l.Attachments {
		if a.Classifier == classifier {
			return a, true
		}
	}
	return Attachment{}, false
}
