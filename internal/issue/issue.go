// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	DescriptorsNotFoundId Id = iota + 1
	ManifestInvalidId
	ModuleNotMatchedId
	ArtifactFileMissingId
	StagingFailedId
	ArchiveFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id
	name     string      // stable name used by 'slotpack explain'
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue page with the given glamour style
// ("auto", "dark", "light", "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		var extra strings.Builder
		extra.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extra.WriteString("- <" + string(link) + ">\n")
		}
		md += extra.String()
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	descriptorsNotFoundIssue = &Issue{
		id:   DescriptorsNotFoundId,
		name: "descriptors-not-found",
		mdMsg: `
# No module descriptors found

The project has no ` + "`src/main/modules`" + ` directory, so no module archive
was produced and nothing was attached to the build.

This is not an error: projects without module descriptors are skipped.

## To produce a module archive
- Create ` + "`src/main/modules`" + ` under the project base directory.
- Add one ` + "`module.xml`" + ` per module at ` + "`<module/path>/<slot>/module.xml`" + `:
~~~
src/main/modules/org/ovirt/engine/common/main/module.xml
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id:   ManifestInvalidId,
		name: "manifest-invalid",
		mdMsg: `
# The project manifest is invalid

slotpack could not load ` + "`slotpack.cue`" + ` or its resolution file.

## Common causes
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names (the schema is closed)
- A resolution file with an unsupported extension (use .toml, .yaml or .yml)

## Example manifest
~~~cue
project: {
    group_id:    "org.ovirt.engine"
    artifact_id: "common"
    final_name:  "common-4.5.0"
    artifact:    "target/common-4.5.0.jar"
}
modules: [{name: "org.ovirt.engine.common"}]
resolution_file: "target/resolved.toml"
~~~`,
	}

	moduleNotMatchedIssue = &Issue{
		id:   ModuleNotMatchedId,
		name: "module-not-matched",
		mdMsg: `
# A module matches no artifact

Every declared module must match the project's own artifact or one of its
resolved dependencies by group id and artifact id.

## Matching rules
1. The project's own artifact is checked first.
2. Otherwise dependencies are scanned in resolution order and the **last**
   dependency with equal ids wins.

## Things you can try
- Check the spelling of ` + "`group_id`" + ` and ` + "`artifact_id`" + ` in the module entry.
- Omitted ids default to the project's own ids.
- Make sure the dependency is present in the resolution file.`,
	}

	artifactFileMissingIssue = &Issue{
		id:   ArtifactFileMissingId,
		name: "artifact-file-missing",
		mdMsg: `
# The matched artifact has no file

The artifact was resolved as metadata only (for example a parent POM), so
there is nothing to copy into the module's slot directory.

## Things you can try
- Build the project before assembling modules so its own artifact exists.
- Point the module at the artifact that carries the binary.
- Add a ` + "`file`" + ` to the dependency entry in the resolution file.`,
	}

	stagingFailedIssue = &Issue{
		id:   StagingFailedId,
		name: "staging-failed",
		mdMsg: `
# The staging tree could not be written

slotpack copies the descriptors and every module artifact into
` + "`<build_dir>/modules`" + ` before packaging it.

## Things you can try
- Check that the build directory is writable.
- Check that the artifact files listed in the resolution file exist.
- Remove a stale staging directory left by a previous run.`,
	}

	archiveFailedIssue = &Issue{
		id:   ArchiveFailedId,
		name: "archive-failed",
		mdMsg: `
# The module archive could not be written

## Things you can try
- Check free disk space in the build directory.
- Make sure no other process holds the archive open.`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config-load-failed",
		mdMsg: `
# Failed to load configuration

The configuration file contains invalid CUE or values the schema rejects.

## Things you can try
- Show the effective configuration:
~~~
$ slotpack config show
~~~
- Recreate a default configuration file:
~~~
$ slotpack config init
~~~`,
	}

	issues = map[Id]*Issue{
		descriptorsNotFoundIssue.Id(): descriptorsNotFoundIssue,
		manifestInvalidIssue.Id():     manifestInvalidIssue,
		moduleNotMatchedIssue.Id():    moduleNotMatchedIssue,
		artifactFileMissingIssue.Id(): artifactFileMissingIssue,
		stagingFailedIssue.Id():       stagingFailedIssue,
		archiveFailedIssue.Id():       archiveFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

// Values returns all issues ordered by id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its stable name.
func Lookup(name string) *Issue {
	for _, is := range issues {
		if is.name == name {
			return is
		}
	}
	return nil
}
