// Package scan implements the single forward pass over the input document: it
// recognises script and stylesheet references line by line, collects scripts
// for bundling, triggers stylesheet minification and writes the rewritten
// document as it goes.
package scan

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/pagebundle/internal/assets"
	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/paths"
)

// cssExt is the extension replaced when deriving a minified stylesheet name.
const cssExt = ".css"

// StylesheetHandler is called synchronously for every stylesheet reference,
// before the rewritten line is emitted.
type StylesheetHandler interface {
	HandleStylesheet(ctx context.Context, ref assets.Reference) error
}

// Scanner rewrites one document. It holds no per-run state and can be reused.
type Scanner struct {
	layout   *paths.Layout
	naming   assets.Naming
	styles   StylesheetHandler
	bodyOnly bool
	pat      *patterns
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBodyOnly leaves script references before the <body> tag untouched.
func WithBodyOnly(enabled bool) Option {
	return func(s *Scanner) { s.bodyOnly = enabled }
}

// New creates a Scanner for the given layout.
func New(layout *paths.Layout, naming assets.Naming, styles StylesheetHandler, opts ...Option) *Scanner {
	s := &Scanner{
		layout: layout,
		naming: naming,
		styles: styles,
		pat:    compilePatterns(layout.JSDirName, layout.CSSDirName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reads r line by line and writes the transformed document to w.
// Collected script paths are appended to collector in document order.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, w io.Writer, collector *assets.Collector) (*Result, error) {
	st := &state{collector: collector, result: &Result{}}
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return st.result, errors.WrapError(err, errors.CategoryCanceled, "document scan canceled").
				WithContext("line", st.lineNo).
				Build()
		}

		raw, readErr := br.ReadString('\n')
		if readErr != nil && !stderrors.Is(readErr, io.EOF) {
			return st.result, errors.WrapError(readErr, errors.CategoryFileSystem, "failed to read input document").
				WithContext("path", s.layout.InputDocument).
				Build()
		}
		if raw == "" && readErr != nil {
			break
		}

		st.lineNo++
		st.result.LinesRead++
		line := strings.TrimRight(raw, "\r\n")
		eol := raw[len(line):]

		out, emit, err := s.processLine(ctx, st, line)
		if err != nil {
			return st.result, err
		}
		if emit {
			if _, err := bw.WriteString(out + eol); err != nil {
				return st.result, errors.WrapError(err, errors.CategoryFileSystem, "failed to write output document").
					WithContext("path", s.layout.OutputDocument).
					Build()
			}
			st.result.LinesWritten++
		}

		if readErr != nil {
			break
		}
	}

	if err := bw.Flush(); err != nil {
		return st.result, errors.WrapError(err, errors.CategoryFileSystem, "failed to write output document").
			WithContext("path", s.layout.OutputDocument).
			Build()
	}
	return st.result, nil
}

// processLine decides the fate of one line: dropped, passed through,
// rewritten or suppressed.
func (s *Scanner) processLine(ctx context.Context, st *state, line string) (string, bool, error) {
	if strings.TrimSpace(line) == "" {
		st.result.BlankLinesDropped++
		return "", false, nil
	}

	refs := count(s.pat.styleRef, line)
	if !s.bodyOnly || st.inBody {
		refs += count(s.pat.scriptRef, line)
	}
	if refs > 1 {
		return "", false, errors.ScanError("line carries more than one asset reference").
			WithContext("path", s.layout.InputDocument).
			WithContext("line", st.lineNo).
			WithContext("text", strings.TrimSpace(line)).
			Build()
	}

	if m, ok, malformed := find(s.pat.styleRef, s.pat.styleProbe, line); ok {
		if !s.pat.styleRel.MatchString(m.tag) {
			return s.rewriteLink(st, line, m), true, nil
		}
		out, err := s.rewriteStylesheet(ctx, st, line, m)
		return out, err == nil, err
	} else if malformed && s.pat.styleRel.MatchString(line) {
		return "", false, s.malformed(st, assets.KindStylesheet, line)
	}

	if s.bodyOnly && !st.inBody {
		if s.pat.body.MatchString(line) {
			st.inBody = true
		}
		return line, true, nil
	}

	if m, ok, malformed := find(s.pat.scriptRef, s.pat.scriptProbe, line); ok {
		return s.rewriteScript(st, line, m)
	} else if malformed {
		return "", false, s.malformed(st, assets.KindScript, line)
	}

	return line, true, nil
}

func (s *Scanner) rewriteStylesheet(ctx context.Context, st *state, line string, m match) (string, error) {
	if !st.cssDirChecked {
		if err := s.layout.CheckCSSDir(); err != nil {
			return "", err
		}
		st.cssDirChecked = true
	}

	ref := assets.Reference{
		Kind:         assets.KindStylesheet,
		DeclaredPath: m.file,
		SourcePath:   s.layout.StylesheetPath(m.file),
		Line:         st.lineNo,
	}
	outName := m.file
	if s.naming.IsPreMinified(m.file) {
		ref.PreMinified = true
		ref.TargetPath = ref.SourcePath
		st.result.PreMinifiedStylesheets++
	} else {
		name, ok := s.naming.MinifiedName(m.file, cssExt)
		if !ok {
			return "", errors.ScanError("cannot derive a minified name for stylesheet").
				WithContext("path", s.layout.InputDocument).
				WithContext("line", st.lineNo).
				WithContext(logfields.KeyAssetKind, string(assets.KindStylesheet)).
				WithContext("file", m.file).
				Build()
		}
		outName = name
		ref.TargetPath = s.layout.StylesheetPath(name)
		st.result.StylesheetsMinified++
	}

	if s.styles != nil {
		if err := s.styles.HandleStylesheet(ctx, ref); err != nil {
			return "", err
		}
	}
	st.result.References = append(st.result.References, ref)

	url := s.layout.AssetURL(s.layout.CSSDirName, outName)
	slog.Debug("Rewrote stylesheet reference", logfields.AssetKind(string(assets.KindStylesheet)), logfields.Line(st.lineNo), logfields.Path(m.file), logfields.Target(url))
	return line[:m.refStart] + url + line[m.refEnd:], nil
}

// rewriteLink re-paths a non-stylesheet link (icon, preload, font) into the
// stylesheet directory. Nothing is minified.
func (s *Scanner) rewriteLink(st *state, line string, m match) string {
	url := s.layout.AssetURL(s.layout.CSSDirName, m.file)
	slog.Debug("Re-pathed link", logfields.AssetKind(string(assets.KindStylesheet)), logfields.Line(st.lineNo), logfields.Path(m.file), logfields.Target(url))
	return line[:m.refStart] + url + line[m.refEnd:]
}

func (s *Scanner) rewriteScript(st *state, line string, m match) (string, bool, error) {
	if m.file == s.layout.BundleName {
		return "", false, errors.ScanError("document already references the bundle output").
			WithContext("path", s.layout.InputDocument).
			WithContext("line", st.lineNo).
			WithContext("file", m.file).
			Build()
	}

	ref := assets.Reference{
		Kind:         assets.KindScript,
		DeclaredPath: m.file,
		SourcePath:   s.layout.ScriptPath(m.file),
		Line:         st.lineNo,
	}

	if s.naming.IsPreMinified(m.file) {
		ref.PreMinified = true
		ref.TargetPath = ref.SourcePath
		st.result.References = append(st.result.References, ref)
		st.result.PreMinifiedScripts++
		url := s.layout.AssetURL(s.layout.JSDirName, m.file)
		slog.Debug("Kept pre-minified script", logfields.AssetKind(string(assets.KindScript)), logfields.Line(st.lineNo), logfields.Target(url))
		return line[:m.refStart] + url + line[m.refEnd:], true, nil
	}

	st.collector.Append(ref.SourcePath)
	st.result.References = append(st.result.References, ref)
	st.result.ScriptsCollected++
	slog.Debug("Collected script", logfields.AssetKind(string(assets.KindScript)), logfields.Line(st.lineNo), logfields.Path(ref.SourcePath))

	if st.hasWrittenBundleTag {
		return "", false, nil
	}
	st.hasWrittenBundleTag = true
	st.result.BundleTagLine = st.lineNo
	return leadingSpace(line) + `<script src="` + s.layout.BundleURL() + `"></script>`, true, nil
}

func (s *Scanner) malformed(st *state, kind assets.Kind, line string) error {
	return errors.ScanError("malformed asset reference").
		WithContext("path", s.layout.InputDocument).
		WithContext("line", st.lineNo).
		WithContext(logfields.KeyAssetKind, string(kind)).
		WithContext("text", strings.TrimSpace(line)).
		Build()
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
