package integration

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updateGolden = flag.Bool("update-golden", false, "Update golden files")

// TestGolden_Basic covers the default workflow:
// - stylesheets minified next to their source, pre-minified ones only re-pathed
// - scripts bundled into one tag at the first script's position
// - blank lines dropped, unrelated attributes untouched
// - license header with the revision note
func TestGolden_Basic(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	report, dir := runGoldenTest(t,
		"../testdata/sites/basic",
		"../testdata/configs/basic.yaml",
		"../testdata/golden/basic",
		*updateGolden,
	)

	assert.Equal(t, 2, report.ScriptsCollected)
	assert.Equal(t, 1, report.PreMinifiedScripts)
	assert.Equal(t, 1, report.StylesheetsMinified)
	assert.Equal(t, 1, report.PreMinifiedStylesheets)
	assert.Equal(t, 2, report.BlankLinesDropped)
	assert.Empty(t, report.MissingAssets)
	require.NotEmpty(t, report.Revision)

	bundle, err := os.ReadFile(filepath.Join(dir, "js", "min.js"))
	require.NoError(t, err)
	header := "/*!\n * revision: " + report.Revision + "\n *\n * jquery\n *\n * MIT License\n * Copyright OpenJS Foundation and other contributors\n */\n"
	require.True(t, strings.HasPrefix(string(bundle), header), string(bundle))
	assert.Contains(t, string(bundle), "menu")

	data, err := os.ReadFile(filepath.Join(dir, "reports", "pagebundle-report.json"))
	require.NoError(t, err)
	var persisted map[string]any
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "success", persisted["outcome"])
}

// TestGolden_HeadScripts covers body-only mode: scripts before <body> keep
// their own tags.
func TestGolden_HeadScripts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	report, _ := runGoldenTest(t,
		"../testdata/sites/head-scripts",
		"../testdata/configs/head-scripts.yaml",
		"../testdata/golden/head-scripts",
		*updateGolden,
	)
	assert.Equal(t, 2, report.ScriptsCollected)
	assert.Empty(t, report.Revision)
}
