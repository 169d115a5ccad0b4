// Package revision reads the git state of the repository holding the input
// document so a bundle can be traced back to the sources it was built from.
package revision

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

const shortLen = 12

// Info describes HEAD of a working tree.
type Info struct {
	Hash   string
	Branch string
	Dirty  bool
}

// IsZero reports whether no revision was detected.
func (i Info) IsZero() bool { return i.Hash == "" }

// String renders the short hash with a "+dirty" suffix for modified trees.
func (i Info) String() string {
	if i.IsZero() {
		return ""
	}
	h := i.Hash
	if len(h) > shortLen {
		h = h[:shortLen]
	}
	if i.Dirty {
		h += "+dirty"
	}
	return h
}

// Detect opens the repository containing path, searching parent directories.
// A path outside any repository, or a repository without commits, yields a
// zero Info and no error.
func Detect(path string) (Info, error) {
	dir := path
	if abs, err := filepath.Abs(path); err == nil {
		dir = abs
	}
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		dir = filepath.Dir(dir)
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, nil
		}
		return Info{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to open git repository").
			WithContext("path", dir).
			Build()
	}

	head, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return Info{}, nil
		}
		return Info{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve HEAD").
			WithContext("path", dir).
			Build()
	}

	info := Info{Hash: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to be dirty.
		return info, nil
	}
	status, err := wt.Status()
	if err != nil {
		return Info{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to get git status").
			WithContext("path", dir).
			Build()
	}
	info.Dirty = !status.IsClean()
	return info, nil
}
