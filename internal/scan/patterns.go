package scan

import (
	"regexp"
	"strings"
)

// patterns holds the compiled reference matchers for one pair of asset
// directory names. For each kind, ref must capture (1) the whole reference
// "dir/file" and (2) the file; probe is a looser match used to detect lines
// that look like a reference but cannot be parsed.
type patterns struct {
	scriptRef   *regexp.Regexp
	scriptProbe *regexp.Regexp
	styleRef    *regexp.Regexp
	styleProbe  *regexp.Regexp
	// styleRel tells stylesheet links apart from icon, preload and other
	// links into the same directory.
	styleRel *regexp.Regexp
	body     *regexp.Regexp
}

func compilePatterns(jsDir, cssDir string) *patterns {
	js := regexp.QuoteMeta(jsDir)
	css := regexp.QuoteMeta(cssDir)
	return &patterns{
		scriptRef:   regexp.MustCompile(`(?i)<script\b[^>]*?\ssrc\s*=\s*["'](` + js + `/([^"'\s<>]+))["']`),
		scriptProbe: regexp.MustCompile(`(?i)<script\b[^>]*\ssrc\s*=\s*["']?` + js + `/`),
		styleRef:    regexp.MustCompile(`(?i)<link\b[^>]*?\shref\s*=\s*["'](` + css + `/([^"'\s<>]+))["']`),
		styleProbe:  regexp.MustCompile(`(?i)<link\b[^>]*\shref\s*=\s*["']?` + css + `/`),
		styleRel:    regexp.MustCompile(`(?i)\srel\s*=\s*["']?[^"'>]*\bstylesheet\b`),
		body:        regexp.MustCompile(`(?i)<body\b`),
	}
}

// match is a located reference inside a line. tag is the element text from
// its opening "<" up to the closing ">" (or the end of the line).
type match struct {
	refStart, refEnd int
	file             string
	tag              string
}

// find returns the reference located by ref, or ok=false. malformed is true
// when the line only satisfies probe.
func find(ref, probe *regexp.Regexp, line string) (m match, ok, malformed bool) {
	idx := ref.FindStringSubmatchIndex(line)
	if idx == nil {
		return match{}, false, probe.MatchString(line)
	}
	tag := line[idx[0]:]
	if end := strings.IndexByte(tag, '>'); end >= 0 {
		tag = tag[:end+1]
	}
	return match{refStart: idx[2], refEnd: idx[3], file: line[idx[4]:idx[5]], tag: tag}, true, false
}

// count returns how many well-formed references of ref the line carries.
func count(ref *regexp.Regexp, line string) int {
	return len(ref.FindAllStringIndex(line, -1))
}
