// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Resolution is the content of a resolution file: resolved artifacts in the
// order the build's dependency resolution produced them.
//
// TOML:
//
//	[[artifacts]]
//	group_id = "org.apache"
//	artifact_id = "commons-lang"
//	file = "/home/build/.m2/repository/commons-lang/commons-lang/2.6/commons-lang-2.6.jar"
//
// YAML:
//
//	artifacts:
//	  - group_id: org.apache
//	    artifact_id: commons-lang
//	    file: ../repo/commons-lang-2.6.jar
type Resolution struct {
	Artifacts []DependencyEntry `toml:"artifacts" yaml:"artifacts"`
}

// LoadResolution reads a TOML (.toml) or YAML (.yaml, .yml) resolution file.
// Relative artifact paths resolve against the file's directory.
func LoadResolution(fsys afero.Fs, path string) ([]DependencyEntry, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolution file: %w", err)
	}

	res, err := ParseResolution(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	entries := make([]DependencyEntry, 0, len(res.Artifacts))
	for i, e := range res.Artifacts {
		if strings.TrimSpace(e.GroupID) == "" || strings.TrimSpace(e.ArtifactID) == "" {
			return nil, fmt.Errorf("%s: artifacts[%d]: group_id and artifact_id are required", path, i)
		}
		if e.File != "" {
			e.File = resolveAgainst(base, e.File)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseResolution decodes resolution file content. ext selects the format
// and must be ".toml", ".yaml" or ".yml".
func ParseResolution(data []byte, ext string) (*Resolution, error) {
	var res Resolution
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&res); err != nil {
			return nil, fmt.Errorf("decode TOML resolution: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&res); err != nil {
			if len(bytes.TrimSpace(data)) == 0 {
				return &res, nil
			}
			return nil, fmt.Errorf("decode YAML resolution: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported resolution file extension %q (use .toml, .yaml or .yml)", ext)
	}
	return &res, nil
}
