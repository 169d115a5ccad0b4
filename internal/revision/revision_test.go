package revision

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "index.html"), []byte("<html></html>\n"), 0o600))

	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("site/index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestDetect_CleanRepository(t *testing.T) {
	dir, hash := initRepo(t)

	info, err := Detect(filepath.Join(dir, "site", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, hash, info.Hash)
	assert.NotEmpty(t, info.Branch)
	assert.False(t, info.Dirty)
	assert.Equal(t, hash[:12], info.String())
}

func TestDetect_DirtyRepository(t *testing.T) {
	dir, hash := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "index.html"), []byte("<html>changed</html>\n"), 0o600))

	info, err := Detect(filepath.Join(dir, "site"))
	require.NoError(t, err)
	assert.True(t, info.Dirty)
	assert.Equal(t, hash[:12]+"+dirty", info.String())
}

func TestDetect_NoRepository(t *testing.T) {
	info, err := Detect(t.TempDir())
	require.NoError(t, err)
	assert.True(t, info.IsZero())
	assert.Empty(t, info.String())
}

func TestDetect_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	info, err := Detect(dir)
	require.NoError(t, err)
	assert.True(t, info.IsZero())
}
