// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestLoadResolution_Formats(t *testing.T) {
	t.Parallel()

	want := []DependencyEntry{
		{GroupID: "org.apache", ArtifactID: "commons-lang", File: "/deps/repo/commons-lang-2.5.jar"},
		{GroupID: "org.apache", ArtifactID: "commons-lang", File: "/abs/commons-lang-2.6.jar"},
		{GroupID: "org.example", ArtifactID: "parent"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "/deps/resolved.toml",
			content: `
[[artifacts]]
group_id = "org.apache"
artifact_id = "commons-lang"
file = "repo/commons-lang-2.5.jar"

[[artifacts]]
group_id = "org.apache"
artifact_id = "commons-lang"
file = "/abs/commons-lang-2.6.jar"

[[artifacts]]
group_id = "org.example"
artifact_id = "parent"
`,
		},
		{
			name: "yaml",
			file: "/deps/resolved.yaml",
			content: `
artifacts:
  - group_id: org.apache
    artifact_id: commons-lang
    file: repo/commons-lang-2.5.jar
  - group_id: org.apache
    artifact_id: commons-lang
    file: /abs/commons-lang-2.6.jar
  - group_id: org.example
    artifact_id: parent
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, tt.file, tt.content)

			got, err := LoadResolution(fsys, tt.file)
			if err != nil {
				t.Fatalf("LoadResolution() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("LoadResolution() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadResolution_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantMsg string
	}{
		{name: "unsupported extension", file: "/d/resolved.json", content: "{}", wantMsg: "unsupported"},
		{name: "unknown toml field", file: "/d/r.toml", content: "[[artifacts]]\ngroup_id = \"g\"\nartifact_id = \"a\"\nversion = \"1\"", wantMsg: "TOML"},
		{name: "unknown yaml field", file: "/d/r.yml", content: "artifacts:\n  - group_id: g\n    artifact_id: a\n    scope: compile\n", wantMsg: "YAML"},
		{name: "missing ids", file: "/d/r.toml", content: "[[artifacts]]\nfile = \"x.jar\"", wantMsg: "artifacts[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, tt.file, tt.content)
			_, err := LoadResolution(fsys, tt.file)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseResolution_EmptyYAML(t *testing.T) {
	t.Parallel()

	res, err := ParseResolution([]byte("\n"), ".yaml")
	if err != nil {
		t.Fatalf("ParseResolution() error = %v", err)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("expected no artifacts, got %v", res.Artifacts)
	}
}
