package commands

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/pipeline"
)

// BuildFlags override configuration values for a single invocation. They are
// shared by build and watch.
type BuildFlags struct {
	Input      string `arg:"" optional:"" help:"Input HTML document"`
	Output     string `arg:"" optional:"" help:"Output HTML document"`
	JSMinifier string `arg:"" optional:"" name:"js-minifier" help:"JavaScript minifier tool"`

	Prefix        string `help:"Relative path from the output document's directory back to the input directory"`
	AutoPrefix    bool   `name:"auto-prefix" help:"Derive --prefix from the input and output locations"`
	Engine        string `help:"Minifier engine: external or builtin"`
	Runner        string `help:"Interpreter used to run the JavaScript minifier"`
	Direct        bool   `help:"Execute the JavaScript minifier directly instead of through the runner"`
	CSSCommand    string `name:"css-command" help:"Stylesheet minifier command"`
	BodyOnly      bool   `name:"body-only" help:"Only bundle scripts referenced after <body>"`
	StampRevision bool   `name:"stamp-revision" help:"Add the git revision of the page to the license header"`
	NoVerify      bool   `name:"no-verify" help:"Skip checking the output document's asset references"`
	ReportDir     string `name:"report-dir" help:"Directory receiving pagebundle-report.json"`
}

// apply copies the flags that were set onto cfg.
func (f *BuildFlags) apply(cfg *config.Config) {
	if f.Input != "" {
		cfg.Input = f.Input
	}
	if f.Output != "" {
		cfg.Output = f.Output
	}
	if f.JSMinifier != "" {
		cfg.Minifiers.JS.Tool = f.JSMinifier
	}
	if f.Prefix != "" {
		cfg.RelativePrefix = f.Prefix
		cfg.AutoPrefix = false
	}
	if f.AutoPrefix {
		cfg.AutoPrefix = true
		cfg.RelativePrefix = ""
	}
	if f.Engine != "" {
		cfg.Minifiers.Engine = config.Engine(f.Engine)
	}
	if f.Runner != "" {
		cfg.Minifiers.JS.Runner = f.Runner
	}
	if f.Direct {
		cfg.Minifiers.JS.Direct = true
	}
	if f.CSSCommand != "" {
		cfg.Minifiers.CSS.Command = f.CSSCommand
	}
	if f.BodyOnly {
		cfg.Assets.BodyOnly = true
	}
	if f.StampRevision {
		cfg.StampRevision = true
	}
	if f.NoVerify {
		cfg.VerifyOutput = false
	}
	if f.ReportDir != "" {
		cfg.ReportDir = f.ReportDir
	}
}

// load reads the configuration and applies the flags on top.
func (f *BuildFlags) load(root *CLI) (*config.Config, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, err
	}
	f.apply(cfg)
	return cfg, nil
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BuildFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := b.load(root)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	rt := newRuntime(cfg)
	defer rt.close()

	out := g.out()
	fmt.Fprintf(out, "Bundling page %s\n", cfg.Input)
	report, err := rt.build(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Debug("Build report", slog.String("summary", report.Summary()))
	printPaths(out, cfg, report)
	return nil
}

// printPaths lists the files a successful build produced.
func printPaths(w io.Writer, cfg *config.Config, report *pipeline.BuildReport) {
	fmt.Fprintln(w, "Done. Paths:")
	fmt.Fprintf(w, "  document: %s\n", cfg.Output)
	if !report.BundleSkipped {
		fmt.Fprintf(w, "  bundle:   %s\n", report.Bundle)
	}
	if cfg.ReportDir != "" {
		fmt.Fprintf(w, "  report:   %s\n", filepath.Join(cfg.ReportDir, pipeline.ReportJSONName))
	}
	for _, missing := range report.MissingAssets {
		fmt.Fprintf(w, "  missing:  %s\n", missing)
	}
}
