package config

import "time"

// Default values for asset naming and tools.
const (
	DefaultJSDir          = "js"
	DefaultCSSDir         = "css"
	DefaultBundleName     = "min.js"
	DefaultMinifiedMarker = ".min."
	DefaultJSRunner       = "node"
	DefaultCSSCommand     = "cleancss"
	DefaultEventSubject   = "pagebundle.builds"
	DefaultWatchDebounce  = 500 * time.Millisecond
)

// DefaultCSSArgs is the argument template handed to DefaultCSSCommand.
var DefaultCSSArgs = []string{"-o", "{output}", "{input}"}

// Default returns a configuration populated with defaults.
func Default() *Config {
	cfg := &Config{VerifyOutput: true}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills empty fields. It is applied again after decoding so that
// keys explicitly set to "" fall back to their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Assets.JSDir == "" {
		cfg.Assets.JSDir = DefaultJSDir
	}
	if cfg.Assets.CSSDir == "" {
		cfg.Assets.CSSDir = DefaultCSSDir
	}
	if cfg.Assets.BundleName == "" {
		cfg.Assets.BundleName = DefaultBundleName
	}
	if cfg.Assets.MinifiedMarker == "" {
		cfg.Assets.MinifiedMarker = DefaultMinifiedMarker
	}
	if cfg.Minifiers.Engine == "" {
		cfg.Minifiers.Engine = EngineExternal
	}
	if cfg.Minifiers.JS.Runner == "" {
		cfg.Minifiers.JS.Runner = DefaultJSRunner
	}
	if cfg.Minifiers.CSS.Command == "" {
		cfg.Minifiers.CSS.Command = DefaultCSSCommand
	}
	if len(cfg.Minifiers.CSS.Args) == 0 {
		cfg.Minifiers.CSS.Args = append([]string(nil), DefaultCSSArgs...)
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultEventSubject
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
