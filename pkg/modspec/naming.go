// SPDX-License-Identifier: MPL-2.0

package modspec

const (
	// ArchiveType is the type under which the module archive is registered.
	ArchiveType = "zip"

	modulesSuffix = "modules"
)

// Classifier returns the classifier of the module archive: the optional
// category followed by "modules", joined with a dash.
func Classifier(category Category) string {
	if category == "" {
		return modulesSuffix
	}
	return string(category) + "-" + modulesSuffix
}

// ArchiveName returns the file name of the module archive:
// "<finalName>-[<category>-]modules.zip".
func ArchiveName(finalName string, category Category) string {
	return finalName + "-" + Classifier(category) + "." + ArchiveType
}
