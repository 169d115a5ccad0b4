package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

func TestRun_ExitCodes(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.Equal(t, errors.ExitUsage, run([]string{"--no-such-flag"}))
	assert.Equal(t, errors.ExitInputMissing, run([]string{"missing.html", "out.html", "--engine", "builtin"}))
	assert.Equal(t, errors.ExitUsage, run([]string{"build", "same.html", "same.html", "--engine", "builtin"}))
	assert.Equal(t, errors.ExitConfig, run([]string{"--config", "absent.yaml", "history"}))
}
