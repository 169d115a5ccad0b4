package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// site creates index.html, js/ and a fake minifier tool under a temp dir.
func site(t *testing.T) (dir string, cfg *config.Config) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>\n"), 0o600))
	tool := filepath.Join(dir, "uglifyjs")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o700))

	cfg = config.Default()
	cfg.Input = filepath.Join(dir, "index.html")
	cfg.Output = filepath.Join(dir, "out", "index.html")
	cfg.Minifiers.JS.Tool = tool
	cfg.Minifiers.JS.Direct = true
	return dir, cfg
}

func TestResolve_DerivesLayout(t *testing.T) {
	dir, cfg := site(t)

	l, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, dir, l.InputDir)
	assert.Equal(t, filepath.Join(dir, "js"), l.JSDir)
	assert.Equal(t, filepath.Join(dir, "css"), l.CSSDir)
	assert.Equal(t, filepath.Join(dir, "js", "min.js"), l.BundlePath)
	assert.Equal(t, filepath.Join(dir, "out"), l.OutputDir)
	assert.Equal(t, cfg.Minifiers.JS.Tool, l.Tool)
	assert.Empty(t, l.RelativePrefix)
	assert.Equal(t, "js/min.js", l.BundleURL())
}

func TestResolve_SamePathCaseInsensitive(t *testing.T) {
	// The paths do not exist: the check must fire before any file-system access.
	cfg := config.Default()
	cfg.Input = "/nowhere/Site/Index.HTML"
	cfg.Output = "/nowhere/site/index.html"
	cfg.Minifiers.JS.Tool = "/nowhere/uglifyjs"

	_, err := Resolve(cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestResolve_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(dir string, cfg *config.Config)
		category errors.ErrorCategory
	}{
		{
			name:     "missing input document",
			mutate:   func(dir string, cfg *config.Config) { cfg.Input = filepath.Join(dir, "missing.html") },
			category: errors.CategoryInputMissing,
		},
		{
			name:     "input is a directory",
			mutate:   func(dir string, cfg *config.Config) { cfg.Input = filepath.Join(dir, "js") },
			category: errors.CategoryInputMissing,
		},
		{
			name:     "missing minifier tool",
			mutate:   func(dir string, cfg *config.Config) { cfg.Minifiers.JS.Tool = filepath.Join(dir, "nope", "uglifyjs") },
			category: errors.CategoryToolMissing,
		},
		{
			name: "missing runner",
			mutate: func(_ string, cfg *config.Config) {
				cfg.Minifiers.JS.Direct = false
				cfg.Minifiers.JS.Runner = "pagebundle-no-such-runner"
			},
			category: errors.CategoryToolMissing,
		},
		{
			name:     "missing js directory",
			mutate:   func(dir string, _ *config.Config) { _ = os.RemoveAll(filepath.Join(dir, "js")) },
			category: errors.CategoryAssetDirMissing,
		},
		{
			name:     "bad config value",
			mutate:   func(_ string, cfg *config.Config) { cfg.Minifiers.Engine = "closure" },
			category: errors.CategoryValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, cfg := site(t)
			tt.mutate(dir, cfg)
			_, err := Resolve(cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category), "got %v", err)
			assert.True(t, errors.IsConfiguration(err))
		})
	}
}

func TestResolve_BuiltinEngineSkipsToolCheck(t *testing.T) {
	_, cfg := site(t)
	cfg.Minifiers.Engine = config.EngineBuiltin
	cfg.Minifiers.JS.Tool = ""

	l, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Empty(t, l.Tool)
}

func TestResolve_AutoPrefix(t *testing.T) {
	dir, cfg := site(t)
	cfg.Output = filepath.Join(dir, "dist", "www", "index.html")
	cfg.AutoPrefix = true

	l, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "../..", l.RelativePrefix)
	assert.Equal(t, "../../js/min.js", l.BundleURL())
	assert.Equal(t, "../../css/main.min.css", l.AssetURL(l.CSSDirName, "main.min.css"))
}

func TestResolve_ExplicitPrefixNormalized(t *testing.T) {
	_, cfg := site(t)
	cfg.RelativePrefix = "./../site/"

	l, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "../site", l.RelativePrefix)
	assert.Equal(t, "../site/js/vendor.min.js", l.AssetURL("js", "vendor.min.js"))
}

func TestCheckCSSDir(t *testing.T) {
	dir, cfg := site(t)
	l, err := Resolve(cfg)
	require.NoError(t, err)

	err = l.CheckCSSDir()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAssetDirMissing))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o750))
	require.NoError(t, l.CheckCSSDir())
}

func TestScriptAndStylesheetPaths(t *testing.T) {
	l := &Layout{JSDir: filepath.Join("site", "js"), CSSDir: filepath.Join("site", "css")}
	assert.Equal(t, filepath.Join("site", "js", "lib", "a.js"), l.ScriptPath("lib/a.js"))
	assert.Equal(t, filepath.Join("site", "css", "main.css"), l.StylesheetPath("main.css"))
}

func TestSamePath(t *testing.T) {
	assert.True(t, SamePath("index.html", "INDEX.html"))
	assert.True(t, SamePath("./site/../index.html", "index.html"))
	assert.False(t, SamePath("index.html", "out/index.html"))
}
