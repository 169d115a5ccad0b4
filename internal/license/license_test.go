package license

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

func TestHeader_Empty(t *testing.T) {
	assert.Empty(t, Header(nil))
}

func TestHeader_OrderAndFormat(t *testing.T) {
	got := Header([]License{
		{Name: "Hammer.js", Text: "MIT License\nCopyright (c) Jorik Tangelder\n"},
		{Name: "howler.js", Text: "MIT License"},
	})

	want := "/*!\n" +
		" * Hammer.js\n" +
		" *\n" +
		" * MIT License\n" +
		" * Copyright (c) Jorik Tangelder\n" +
		" *\n" +
		" * howler.js\n" +
		" *\n" +
		" * MIT License\n" +
		" */\n"
	assert.Equal(t, want, got)
}

func TestHeader_NotesFirst(t *testing.T) {
	got := Header([]License{{Name: "lib", Text: "BSD"}}, "revision: abc123")
	assert.Equal(t, "/*!\n * revision: abc123\n *\n * lib\n *\n * BSD\n */\n", got)

	onlyNotes := Header(nil, "revision: abc123")
	assert.Equal(t, "/*!\n * revision: abc123\n */\n", onlyNotes)
}

func TestHeader_NeutralisesCommentTerminator(t *testing.T) {
	got := Header([]License{{Name: "evil */ name", Text: "a */ b"}})
	assert.Equal(t, 1, bytes.Count([]byte(got), []byte("*/")), "only the closing terminator may remain: %q", got)
}

func TestInject_PrependsHeader(t *testing.T) {
	var buf bytes.Buffer
	n, err := Inject(&buf, []License{{Name: "lib", Text: "MIT"}}, []byte("var a=1;"))
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)
	assert.Equal(t, "/*!\n * lib\n *\n * MIT\n */\nvar a=1;", buf.String())
}

func TestInject_NoLicensesWritesMinifiedOnly(t *testing.T) {
	var buf bytes.Buffer
	_, err := Inject(&buf, nil, []byte("var a=1;"))
	require.NoError(t, err)
	assert.Equal(t, "var a=1;", buf.String())
}

func TestParseManifest_Forms(t *testing.T) {
	list := []byte("- name: a\n  text: one\n- name: b\n  text: two\n")
	wrapped := []byte("licenses:\n  - name: a\n    text: one\n  - name: b\n    text: two\n")

	for _, data := range [][]byte{list, wrapped} {
		got, err := ParseManifest(data)
		require.NoError(t, err)
		assert.Equal(t, []License{{Name: "a", Text: "one"}, {Name: "b", Text: "two"}}, got)
	}
}

func TestParseManifest_RejectsEmptyEntry(t *testing.T) {
	_, err := ParseManifest([]byte("- name: \"\"\n  text: \"\"\n"))
	require.Error(t, err)
}

func TestResolve_InlineThenManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "licenses.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("- name: from-manifest\n  text: MIT\n"), 0o600))

	got, err := Resolve([]License{{Name: "inline", Text: "BSD"}}, manifest)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "inline", got[0].Name)
	assert.Equal(t, "from-manifest", got[1].Name)
}

func TestResolve_MissingManifestIsConfigError(t *testing.T) {
	_, err := Resolve(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
