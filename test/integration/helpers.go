// Package integration runs complete builds against the sites under
// test/testdata and compares the produced files with golden copies.
package integration

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/pipeline"
)

// setupSite copies a fixture site into a temporary git repository with one
// commit and makes it the working directory.
func setupSite(t *testing.T, sitePath string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, copyDir(sitePath, dir), "failed to copy site fixture")

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "failed to initialize git repo")
	w, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")
	require.NoError(t, w.AddGlob("."), "failed to add files to git")
	_, err = w.Commit("Initial test commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err, "failed to create initial commit")

	t.Chdir(dir)
	return dir
}

// runGoldenTest builds the site with configPath and checks every file under
// goldenDir against the build's output. With update set the golden files are
// rewritten instead.
func runGoldenTest(t *testing.T, sitePath, configPath, goldenDir string, update bool) (*pipeline.BuildReport, string) {
	t.Helper()

	configPath, err := filepath.Abs(configPath)
	require.NoError(t, err)
	goldenDir, err = filepath.Abs(goldenDir)
	require.NoError(t, err)
	sitePath, err = filepath.Abs(sitePath)
	require.NoError(t, err)

	dir := setupSite(t, sitePath)
	cfg, err := config.Load(configPath, true)
	require.NoError(t, err, "failed to load config")

	report, err := pipeline.NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err, "build failed")
	require.Equal(t, pipeline.OutcomeSuccess, report.Outcome, report.Summary())

	err = filepath.WalkDir(goldenDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(goldenDir, path)
		if err != nil {
			return err
		}
		actual, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, "expected output %s is missing", rel)

		if update {
			return os.WriteFile(path, actual, 0o644)
		}
		expected, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		require.Equal(t, string(expected), string(actual), "output %s differs from golden file", rel)
		return nil
	})
	require.NoError(t, err)
	return report, dir
}

// copyDir recursively copies a directory tree.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
