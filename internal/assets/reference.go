// Package assets holds the asset reference model shared by the scanner and the
// minification stages: reference kinds, the pre-minified naming convention and
// the ordered collector of scripts to bundle.
package assets

import (
	"path"
	"strings"
)

// TempPattern is the os.CreateTemp pattern for every temporary file a build
// creates next to its outputs.
const TempPattern = ".pagebundle-*"

// IsTempFile reports whether name was created from TempPattern.
func IsTempFile(name string) bool {
	return strings.HasPrefix(path.Base(name), ".pagebundle-")
}

// Kind distinguishes script and stylesheet references.
type Kind string

const (
	KindScript     Kind = "script"
	KindStylesheet Kind = "stylesheet"
)

// Reference is one asset reference found in the input document.
type Reference struct {
	Kind Kind
	// DeclaredPath is the file name as written in the document, relative to
	// its asset directory (e.g. "a.js" for src="js/a.js").
	DeclaredPath string
	// SourcePath is the file on disk.
	SourcePath string
	// TargetPath is the minified file on disk. Equal to SourcePath for
	// pre-minified assets and empty for scripts, which go into the bundle.
	TargetPath  string
	PreMinified bool
	// Line is the 1-based line number in the input document.
	Line int
}

// Naming implements the "already minified" file name convention.
type Naming struct {
	// Marker is the substring that flags a minified file name, e.g. ".min.".
	Marker string
}

// IsPreMinified reports whether name already carries the minified marker.
func (n Naming) IsPreMinified(name string) bool {
	return n.Marker != "" && strings.Contains(path.Base(name), n.Marker)
}

// MinifiedName derives the minified variant of name by inserting the marker
// before the extension: "main.css" becomes "main.min.css". ok is false when
// name does not end in ext.
func (n Naming) MinifiedName(name, ext string) (string, bool) {
	if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) || len(name) == len(ext) {
		return "", false
	}
	stem := name[:len(name)-len(ext)]
	if strings.HasSuffix(stem, "/") {
		return "", false
	}
	return stem + strings.TrimSuffix(n.Marker, ".") + name[len(name)-len(ext):], true
}
