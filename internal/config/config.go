package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/license"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "pagebundle.yaml"

// Engine selects how assets are minified.
type Engine string

const (
	// EngineExternal shells out to the configured JS and CSS minifier tools.
	EngineExternal Engine = "external"
	// EngineBuiltin minifies in-process.
	EngineBuiltin Engine = "builtin"
)

// Config represents the bundle configuration.
type Config struct {
	Input          string `yaml:"input,omitempty"`
	Output         string `yaml:"output,omitempty"`
	RelativePrefix string `yaml:"relative_prefix,omitempty"`
	// AutoPrefix derives RelativePrefix from the output document's location.
	AutoPrefix bool `yaml:"auto_prefix,omitempty"`

	Assets    AssetsConfig    `yaml:"assets"`
	Minifiers MinifiersConfig `yaml:"minifiers"`

	Licenses        []license.License `yaml:"licenses,omitempty"`
	LicenseManifest string            `yaml:"license_manifest,omitempty"`
	StampRevision   bool              `yaml:"stamp_revision,omitempty"`

	VerifyOutput bool   `yaml:"verify_output"`
	ReportDir    string `yaml:"report_dir,omitempty"`

	History HistoryConfig `yaml:"history,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
}

// AssetsConfig names the asset directories and file naming conventions.
type AssetsConfig struct {
	JSDir          string `yaml:"js_dir"`
	CSSDir         string `yaml:"css_dir"`
	BundleName     string `yaml:"bundle_name"`
	MinifiedMarker string `yaml:"minified_marker"`
	// BodyOnly leaves script references before <body> untouched.
	BodyOnly bool `yaml:"body_only,omitempty"`
}

// MinifiersConfig configures the minification engine and external tools.
type MinifiersConfig struct {
	Engine Engine            `yaml:"engine"`
	JS     JSMinifierConfig  `yaml:"js"`
	CSS    CSSMinifierConfig `yaml:"css"`
}

// JSMinifierConfig describes the external JS minifier. By default the tool is
// run through Runner (`node <tool> <file>`); Direct executes the tool itself.
type JSMinifierConfig struct {
	Tool   string   `yaml:"tool,omitempty"`
	Runner string   `yaml:"runner,omitempty"`
	Direct bool     `yaml:"direct,omitempty"`
	Args   []string `yaml:"args,omitempty"`
}

// CSSMinifierConfig describes the external CSS minifier. Args may contain the
// {input} and {output} placeholders.
type CSSMinifierConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// HistoryConfig enables the SQLite build ledger when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// EventsConfig enables build-completed events on NATS when NATSURL is set.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// MetricsConfig enables Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig tunes `pagebundle watch`.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Load reads configuration from path on top of the defaults. A missing file is
// only an error when the caller passed the path explicitly.
func Load(path string, explicit bool) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot read configuration file").
			WithContext("path", path).
			Build()
	}

	if err := decode(data, cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration file").
			WithContext("path", path).
			Build()
	}
	applyDefaults(cfg)
	return cfg, nil
}

// decode expands ${VAR} references and strictly decodes YAML into cfg.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Init writes a starter configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Input = "index.html"
	example.Output = "dist/index.html"
	example.AutoPrefix = true
	example.Minifiers.JS.Tool = "node_modules/uglify-js/bin/uglifyjs"
	example.Licenses = []license.License{
		{Name: "example-library", Text: "MIT License\nCopyright (c) the example-library authors"},
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
