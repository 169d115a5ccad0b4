package scan

import "git.home.luguber.info/inful/pagebundle/internal/assets"

// state is the mutable context threaded through a single document pass.
type state struct {
	lineNo int

	// hasWrittenBundleTag is set once the bundle script tag has been emitted
	// in place of the first collected script reference.
	hasWrittenBundleTag bool

	// inBody is only consulted in body-only mode.
	inBody bool

	cssDirChecked bool

	collector *assets.Collector
	result    *Result
}

// Result summarises a document pass.
type Result struct {
	// References lists every asset reference in document order.
	References []assets.Reference

	LinesRead         int
	LinesWritten      int
	BlankLinesDropped int

	// BundleTagLine is the input line replaced by the bundle script tag, 0 if
	// no script was collected.
	BundleTagLine int

	ScriptsCollected       int
	PreMinifiedScripts     int
	StylesheetsMinified    int
	PreMinifiedStylesheets int
}
