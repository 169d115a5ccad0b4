// Package paths validates the bundle inputs and derives every location the
// pipeline reads from or writes to.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// Layout is the validated, read-only view of a bundle run's file-system locations.
type Layout struct {
	InputDocument  string
	OutputDocument string
	InputDir       string
	OutputDir      string

	JSDirName  string
	CSSDirName string
	BundleName string

	// JSDir and CSSDir sit next to the input document.
	JSDir  string
	CSSDir string
	// BundlePath is where the concatenated, minified script ends up.
	BundlePath string

	// RelativePrefix leads from the output document's directory back to the
	// input directory. Slash separated, never with a trailing slash; empty
	// means the same directory.
	RelativePrefix string

	// Tool is the JS minifier path as validated (empty for the builtin engine).
	Tool string
}

var folder = cases.Fold()

// SamePath reports whether a and b name the same document, ignoring case.
func SamePath(a, b string) bool {
	if folder.String(filepath.Clean(a)) == folder.String(filepath.Clean(b)) {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return folder.String(absA) == folder.String(absB)
}

// Resolve validates cfg against the file system and derives the layout.
// Checks run in a fixed order and the first failure is returned; nothing is
// created or written.
func Resolve(cfg *config.Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if SamePath(cfg.Input, cfg.Output) {
		return nil, errors.ValidationError("input and output documents are the same file").
			WithContext("input", cfg.Input).
			WithContext("output", cfg.Output).
			Build()
	}

	info, err := os.Stat(cfg.Input)
	if err != nil || info.IsDir() {
		return nil, errors.InputMissingError("input document does not exist").
			WithContext("path", cfg.Input).
			Build()
	}

	tool := ""
	if cfg.Minifiers.Engine == config.EngineExternal {
		tool, err = resolveTool(cfg.Minifiers.JS)
		if err != nil {
			return nil, err
		}
	}

	inputDir := filepath.Dir(cfg.Input)
	l := &Layout{
		InputDocument:  cfg.Input,
		OutputDocument: cfg.Output,
		InputDir:       inputDir,
		OutputDir:      filepath.Dir(cfg.Output),
		JSDirName:      cfg.Assets.JSDir,
		CSSDirName:     cfg.Assets.CSSDir,
		BundleName:     cfg.Assets.BundleName,
		JSDir:          filepath.Join(inputDir, filepath.FromSlash(cfg.Assets.JSDir)),
		CSSDir:         filepath.Join(inputDir, filepath.FromSlash(cfg.Assets.CSSDir)),
		Tool:           tool,
	}
	l.BundlePath = filepath.Join(l.JSDir, l.BundleName)

	if info, err := os.Stat(l.JSDir); err != nil || !info.IsDir() {
		return nil, errors.AssetDirMissingError("script directory does not exist next to the input document").
			WithContext("path", l.JSDir).
			Build()
	}

	if cfg.AutoPrefix {
		prefix, err := AutoPrefix(cfg.Input, cfg.Output)
		if err != nil {
			return nil, err
		}
		l.RelativePrefix = prefix
	} else {
		l.RelativePrefix = NormalizePrefix(cfg.RelativePrefix)
	}
	return l, nil
}

// resolveTool checks that the JS minifier (and its runner, if any) can be found.
// Bare names without a directory are looked up on PATH.
func resolveTool(js config.JSMinifierConfig) (string, error) {
	tool := js.Tool
	if _, err := os.Stat(tool); err != nil {
		found := ""
		if !strings.ContainsRune(tool, filepath.Separator) && !strings.Contains(tool, "/") {
			found, _ = exec.LookPath(tool)
		}
		if found == "" {
			return "", errors.ToolMissingError("js minifier tool does not exist").
				WithContext("path", tool).
				Build()
		}
		tool = found
	}
	if !js.Direct && js.Runner != "" {
		if _, err := exec.LookPath(js.Runner); err != nil {
			return "", errors.ToolMissingError("js minifier runner not found").
				WithContext("runner", js.Runner).
				Build()
		}
	}
	return tool, nil
}

// CheckCSSDir verifies the stylesheet directory. It is only required once a
// stylesheet reference is actually found.
func (l *Layout) CheckCSSDir() error {
	if info, err := os.Stat(l.CSSDir); err != nil || !info.IsDir() {
		return errors.AssetDirMissingError("stylesheet directory does not exist next to the input document").
			WithContext("path", l.CSSDir).
			Build()
	}
	return nil
}

// ScriptPath resolves a file named in a script reference to its location on disk.
func (l *Layout) ScriptPath(file string) string {
	return filepath.Join(l.JSDir, filepath.FromSlash(file))
}

// StylesheetPath resolves a file named in a stylesheet reference to its location on disk.
func (l *Layout) StylesheetPath(file string) string {
	return filepath.Join(l.CSSDir, filepath.FromSlash(file))
}

// AssetURL is the reference written into the output document for file inside
// the asset directory dirName.
func (l *Layout) AssetURL(dirName, file string) string {
	ref := dirName + "/" + file
	if l.RelativePrefix == "" {
		return ref
	}
	return l.RelativePrefix + "/" + ref
}

// BundleURL is the reference to the bundle written into the output document.
func (l *Layout) BundleURL() string {
	return l.AssetURL(l.JSDirName, l.BundleName)
}
