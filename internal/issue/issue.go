// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Catalogue entries.
const (
	ManifestNotFoundId Id = iota + 1
	ManifestInvalidId
	LocalPathMissingId
	AmbiguousResultId
	DependencyUnsatisfiableId
	InstallFailedId
	PropertyInvalidId
	LockfileWriteFailedId
	PackageConflictId
	RegistryUnavailableId
	ConfigLoadFailedId
	InvalidInstallModeId
)

type (
	// Id identifies a catalogue entry.
	Id int

	// MarkdownMsg is the page body.
	MarkdownMsg string

	// HttpLink is a documentation URL appended to a rendered page.
	HttpLink string

	// Issue is one help page.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render formats the page for a terminal. stylePath is a glamour style name
// such as "dark", "light" or "notty".
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range append(slices.Clone(i.docLinks), i.extLinks...) {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No manifest.json found!

Every package directory, including your application, needs a manifest.json.

## Things you can try:
- Run the command from your application directory
- Pass the application directory explicitly:
~~~
$ appkg install --app-dir ./my_app
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# The manifest could not be read!

manifest.json failed validation. The message above names the offending field.

## Things you can try:
- Check that "type" is one of app, extension, protocol, addon_loader or system
- Check that "version" is a semantic version such as 1.2.0
- Check that every dependency is either {"type", "name", "version"} or {"path"}`,
	}

	localPathMissingIssue = &Issue{
		id: LocalPathMissingId,
		mdMsg: `
# A local dependency path does not point at a package!

A {"path": ...} dependency must name a directory holding a manifest.json.

## Things you can try:
- Fix or remove the dependency entry in manifest.json
- Restore the package directory it points to`,
	}

	ambiguousResultIssue = &Issue{
		id: AmbiguousResultId,
		mdMsg: `
# The resolver did not settle on a single package!

The package you asked for resolved to zero or several candidates.

## Things you can try:
- Pin an exact version: appkg install extension my_ext@1.2.0
- Check the registry index for duplicate entries`,
	}

	dependencyUnsatisfiableIssue = &Issue{
		id: DependencyUnsatisfiableId,
		mdMsg: `
# Dependencies cannot be satisfied!

No combination of published packages matches every declared constraint on
this platform.

## Things you can try:
- Relax the version constraint in manifest.json
- Check that the package supports your operating system and architecture
- Run with --verbose to see which candidates were rejected`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# A package failed to install!

Files that were already written are left in place.

## Things you can try:
- Check write permissions on the app_packages directory
- Remove the half-installed package and retry:
~~~
$ appkg uninstall extension my_ext
$ appkg install
~~~`,
	}

	propertyInvalidIssue = &Issue{
		id: PropertyInvalidId,
		mdMsg: `
# An installed package has an invalid property.json!

The archive extracted fine but its property document failed validation.

## Things you can try:
- Report the problem to the package author
- Install a different version of the package`,
	}

	lockfileWriteFailedIssue = &Issue{
		id: LockfileWriteFailedId,
		mdMsg: `
# manifest-lock.json could not be written!

The previous lock file, if any, was left untouched.

## Things you can try:
- Check write permissions on the application directory
- Make sure no other process holds the file open`,
	}

	packageConflictIssue = &Issue{
		id: PackageConflictId,
		mdMsg: `
# Installed local packages would be replaced!

The resolution replaces packages that are installed from a local path.

## Things you can try:
- Re-run with --yes to accept the replacement
- Declare the package with {"path": ...} to keep the local copy`,
	}

	registryUnavailableIssue = &Issue{
		id: RegistryUnavailableId,
		mdMsg: `
# The registry could not be reached!

## Things you can try:
- Check registry.index in your config.cue
- Override it for one run: APPKG_REGISTRY_INDEX=/path/to/registry appkg install`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check config.cue for CUE syntax errors
- Compare it with the defaults:
~~~
$ appkg config show
~~~`,
	}

	invalidInstallModeIssue = &Issue{
		id: InvalidInstallModeId,
		mdMsg: `
# Invalid local install mode!

install.local_mode must be "copy" or "link".`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():        manifestNotFoundIssue,
		manifestInvalidIssue.Id():         manifestInvalidIssue,
		localPathMissingIssue.Id():        localPathMissingIssue,
		ambiguousResultIssue.Id():         ambiguousResultIssue,
		dependencyUnsatisfiableIssue.Id(): dependencyUnsatisfiableIssue,
		installFailedIssue.Id():           installFailedIssue,
		propertyInvalidIssue.Id():         propertyInvalidIssue,
		lockfileWriteFailedIssue.Id():     lockfileWriteFailedIssue,
		packageConflictIssue.Id():         packageConflictIssue,
		registryUnavailableIssue.Id():     registryUnavailableIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		invalidInstallModeIssue.Id():      invalidInstallModeIssue,
	}
)

// Values returns every catalogue entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Catalogue returns a copy of the Id to page mapping.
func Catalogue() map[Id]*Issue {
	return maps.Clone(issues)
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
