package minify

import (
	"io"
	"os"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// Concatenate copies the files in order to w with nothing inserted between
// them, so trailing newlines (or their absence) survive verbatim.
func Concatenate(w io.Writer, paths []string) (int64, error) {
	var total int64
	for _, p := range paths {
		n, err := copyFile(w, p)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func copyFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryFileSystem, "referenced script cannot be read").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, errors.WrapError(err, errors.CategoryFileSystem, "failed to concatenate script").
			WithContext("path", path).
			Build()
	}
	return n, nil
}
