package pipeline

import (
	"git.home.luguber.info/inful/pagebundle/internal/assets"
	"git.home.luguber.info/inful/pagebundle/internal/config"
	"git.home.luguber.info/inful/pagebundle/internal/license"
	"git.home.luguber.info/inful/pagebundle/internal/metrics"
	"git.home.luguber.info/inful/pagebundle/internal/minify"
	"git.home.luguber.info/inful/pagebundle/internal/paths"
	"git.home.luguber.info/inful/pagebundle/internal/revision"
	"git.home.luguber.info/inful/pagebundle/internal/scan"
)

// BuildState is the mutable context threaded through the stages of one build.
type BuildState struct {
	Config *config.Config
	Report *BuildReport

	// Set by resolve_paths.
	Layout       *paths.Layout
	Licenses     []license.License
	Orchestrator *minify.Orchestrator
	Revision     revision.Info

	// Set by scan_document.
	Collector *assets.Collector
	Scan      *scan.Result

	// Set by bundle_scripts.
	Minified []byte

	document *pendingFile
	bundle   *pendingFile

	builder  *Builder
	observer BuildObserver
	recorder metrics.Recorder
}

func newBuildState(b *Builder, report *BuildReport) *BuildState {
	return &BuildState{
		Config:    b.cfg,
		Report:    report,
		Collector: assets.NewCollector(),
		builder:   b,
		observer:  b.buildObserver(),
		recorder:  b.recorder,
	}
}

// discardPending removes temporary outputs that were not committed.
func (bs *BuildState) discardPending() {
	for _, p := range []*pendingFile{bs.bundle, bs.document} {
		if p != nil {
			p.Discard()
		}
	}
}
