package minify

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
)

const (
	placeholderInput  = "{input}"
	placeholderOutput = "{output}"
)

// BinaryScriptMinifier runs an external JS minifier that prints its result on
// stdout, e.g. `node uglifyjs <file>`.
type BinaryScriptMinifier struct {
	Tool string
	// Runner launches Tool unless Direct is set.
	Runner string
	Direct bool
	// Args go between the tool and the file. An argument containing {input}
	// receives the file path instead of it being appended.
	Args []string
}

func (b *BinaryScriptMinifier) Name() string { return filepath.Base(b.Tool) }

func (b *BinaryScriptMinifier) MinifyScript(ctx context.Context, path string) ([]byte, error) {
	name := b.Tool
	var argv []string
	if !b.Direct && b.Runner != "" {
		name = b.Runner
		argv = append(argv, b.Tool)
	}
	args, hasInput, _ := expand(b.Args, path, "")
	argv = append(argv, args...)
	if !hasInput {
		argv = append(argv, path)
	}

	stdout, err := run(ctx, name, argv)
	if err != nil {
		return nil, err
	}
	return stdout, nil
}

// CommandStylesheetMinifier runs an external CSS minifier that writes the
// output file itself, e.g. `cleancss -o {output} {input}`.
type CommandStylesheetMinifier struct {
	Command string
	Args    []string
}

func (c *CommandStylesheetMinifier) Name() string { return filepath.Base(c.Command) }

func (c *CommandStylesheetMinifier) MinifyStylesheet(ctx context.Context, input, output string) error {
	args, hasInput, hasOutput := expand(c.Args, input, output)
	if !hasInput {
		args = append(args, input)
	}
	if !hasOutput {
		args = append(args, output)
	}
	_, err := run(ctx, c.Command, args)
	return err
}

// expand substitutes the file placeholders in args and reports which of
// them were present.
func expand(args []string, input, output string) (out []string, hasInput, hasOutput bool) {
	out = make([]string, 0, len(args))
	for _, a := range args {
		hasInput = hasInput || strings.Contains(a, placeholderInput)
		hasOutput = hasOutput || strings.Contains(a, placeholderOutput)
		a = strings.ReplaceAll(a, placeholderInput, input)
		a = strings.ReplaceAll(a, placeholderOutput, output)
		out = append(out, a)
	}
	return out, hasInput, hasOutput
}

// run executes name with args and returns stdout. The exit code is the only
// success signal; stderr is attached verbatim to the error.
func run(ctx context.Context, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Invoking minifier", logfields.Tool(name), slog.Any("args", args))

	err := cmd.Run()
	if errStr := stderr.String(); errStr != "" && err == nil {
		slog.Debug("minifier stderr", logfields.Tool(name), slog.String("error_output", errStr))
	}
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctx.Err() != nil {
		return nil, errors.WrapError(ctx.Err(), errors.CategoryCanceled, "minifier interrupted").
			WithContext("tool", name).
			Build()
	}

	b := errors.WrapError(err, errors.CategoryExternalTool, "minifier failed").
		WithContext("tool", name)
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		b = b.WithContext("exit_code", exitErr.ExitCode())
	} else if stderrors.Is(err, exec.ErrNotFound) {
		b = errors.WrapError(err, errors.CategoryToolMissing, "minifier not found").
			WithContext("tool", name).
			UserAction()
	}
	if errStr := strings.TrimRight(stderr.String(), "\n"); errStr != "" {
		b = b.WithContext("stderr", errStr)
	}
	return nil, b.Build()
}
