package minify

import (
	"context"
	"os"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

const (
	mediaCSS = "text/css"
	mediaJS  = "application/javascript"
)

// Builtin minifies in process with tdewolff/minify. It needs no external
// tools and serves both asset kinds.
type Builtin struct {
	m *minify.M
}

// NewBuiltin creates a Builtin minifier.
func NewBuiltin() *Builtin {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return &Builtin{m: m}
}

func (b *Builtin) Name() string { return "builtin" }

func (b *Builtin) MinifyScript(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryCanceled, "minification canceled").Build()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read script").
			WithContext("path", path).
			Build()
	}
	out, err := b.m.Bytes(mediaJS, src)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryExternalTool, "script minification failed").
			WithContext("tool", b.Name()).
			WithContext("path", path).
			Build()
	}
	return out, nil
}

func (b *Builtin) MinifyStylesheet(ctx context.Context, input, output string) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapError(err, errors.CategoryCanceled, "minification canceled").Build()
	}
	src, err := os.ReadFile(input)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read stylesheet").
			WithContext("path", input).
			Build()
	}
	out, err := b.m.Bytes(mediaCSS, src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryExternalTool, "stylesheet minification failed").
			WithContext("tool", b.Name()).
			WithContext("path", input).
			Build()
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write minified stylesheet").
			WithContext("path", output).
			Build()
	}
	return nil
}
