// Package minify orchestrates asset minification. The minifiers themselves
// are black boxes behind two small interfaces: an external process (the
// default, e.g. uglify-js under node and clean-css) or the in-process
// tdewolff engine.
package minify

import (
	"context"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/paths"
)

// ScriptMinifier turns one JavaScript file into minified text.
type ScriptMinifier interface {
	Name() string
	MinifyScript(ctx context.Context, path string) ([]byte, error)
}

// StylesheetMinifier writes the minified form of input to output.
type StylesheetMinifier interface {
	Name() string
	MinifyStylesheet(ctx context.Context, input, output string) error
}

// FromConfig builds the minifiers selected by cfg.Minifiers.Engine. The JS
// tool path comes from the validated layout.
func FromConfig(cfg *config.Config, layout *paths.Layout) (ScriptMinifier, StylesheetMinifier) {
	if cfg.Minifiers.Engine == config.EngineBuiltin {
		b := NewBuiltin()
		return b, b
	}
	js := &BinaryScriptMinifier{
		Tool:   layout.Tool,
		Runner: cfg.Minifiers.JS.Runner,
		Direct: cfg.Minifiers.JS.Direct,
		Args:   cfg.Minifiers.JS.Args,
	}
	css := &CommandStylesheetMinifier{
		Command: cfg.Minifiers.CSS.Command,
		Args:    cfg.Minifiers.CSS.Args,
	}
	return js, css
}
