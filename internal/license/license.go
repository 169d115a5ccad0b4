// Package license builds the attribution comment block that is prepended to the
// minified script bundle.
//
// Licenses are configuration, not code: a list of {name, text} pairs given inline
// in pagebundle.yaml and/or in a separate YAML manifest. Entries are written in
// the order they were declared.
package license

import (
	"fmt"
	"io"
	"strings"
)

// License is a single third-party attribution notice.
type License struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"text" json:"text"`
}

// Header renders licenses as one /*! ... */ comment block. Notes are written
// first, one per line (used for the revision stamp). The block ends with a
// newline so the minified code starts on its own line. An empty list with no
// notes yields an empty header.
func Header(licenses []License, notes ...string) string {
	if len(licenses) == 0 && len(notes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("/*!\n")
	for _, n := range notes {
		writeLine(&b, n)
	}
	for i, l := range licenses {
		if i > 0 || len(notes) > 0 {
			b.WriteString(" *\n")
		}
		if l.Name != "" {
			writeLine(&b, l.Name)
		}
		text := strings.TrimRight(strings.ReplaceAll(l.Text, "\r\n", "\n"), "\n")
		if text == "" {
			continue
		}
		if l.Name != "" {
			b.WriteString(" *\n")
		}
		for _, line := range strings.Split(text, "\n") {
			writeLine(&b, line)
		}
	}
	b.WriteString(" */\n")
	return b.String()
}

func writeLine(b *strings.Builder, line string) {
	// A literal terminator inside a notice would close the block early.
	line = strings.ReplaceAll(line, "*/", "* /")
	line = strings.TrimRight(line, " \t")
	if line == "" {
		b.WriteString(" *\n")
		return
	}
	b.WriteString(" * ")
	b.WriteString(line)
	b.WriteString("\n")
}

// Inject writes the license header followed by the minified script.
func Inject(w io.Writer, licenses []License, minified []byte, notes ...string) (int, error) {
	header := Header(licenses, notes...)
	n, err := io.WriteString(w, header)
	if err != nil {
		return n, fmt.Errorf("write license header: %w", err)
	}
	m, err := w.Write(minified)
	if err != nil {
		return n + m, fmt.Errorf("write minified script: %w", err)
	}
	return n + m, nil
}
