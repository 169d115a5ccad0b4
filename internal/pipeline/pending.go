package pipeline

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagebundle/internal/assets"
	ferrors "git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

const outputFileMode = 0o644

// pendingFile is an output written to a temporary file beside its target and
// renamed over it on commit.
type pendingFile struct {
	target    string
	tmp       string
	f         *os.File
	committed bool
}

func createPending(target string) (*pendingFile, error) {
	f, err := os.CreateTemp(filepath.Dir(target), assets.TempPattern+filepath.Ext(target))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create temporary output").
			WithContext("path", target).
			Build()
	}
	return &pendingFile{target: target, tmp: f.Name(), f: f}, nil
}

func (p *pendingFile) Write(b []byte) (int, error) { return p.f.Write(b) }

// Close flushes the temporary file. It is safe to call more than once.
func (p *pendingFile) Close() error {
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write temporary output").
			WithContext("path", p.tmp).
			Build()
	}
	return nil
}

// Commit moves the temporary file over the target.
func (p *pendingFile) Commit() error {
	if err := p.Close(); err != nil {
		return err
	}
	if err := os.Chmod(p.tmp, outputFileMode); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to set output permissions").
			WithContext("path", p.tmp).
			Build()
	}
	if err := os.Rename(p.tmp, p.target); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to move output into place").
			WithContext("path", p.target).
			Build()
	}
	p.committed = true
	return nil
}

// Discard removes the temporary file unless it was committed.
func (p *pendingFile) Discard() {
	_ = p.Close()
	if !p.committed {
		_ = os.Remove(p.tmp)
	}
}
