package paths

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// NormalizePrefix converts a user supplied relative prefix to slash form
// without a trailing slash. "." and "./" mean the same directory.
func NormalizePrefix(prefix string) string {
	p := strings.TrimSpace(filepath.ToSlash(prefix))
	if strings.Contains(p, "://") {
		return strings.TrimRight(p, "/")
	}
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.TrimRight(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// AutoPrefix computes the prefix leading from the output document's directory
// to the input document's directory.
func AutoPrefix(input, output string) (string, error) {
	inDir, err := filepath.Abs(filepath.Dir(input))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "cannot resolve input directory").
			WithContext("path", input).
			Build()
	}
	outDir, err := filepath.Abs(filepath.Dir(output))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "cannot resolve output directory").
			WithContext("path", output).
			Build()
	}
	rel, err := filepath.Rel(outDir, inDir)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "output directory cannot reach the input directory").
			WithContext("input", input).
			WithContext("output", output).
			Build()
	}
	return NormalizePrefix(rel), nil
}
