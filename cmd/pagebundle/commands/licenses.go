package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pagebundle/internal/license"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/revision"
)

// LicensesCmd prints the header the next build would inject.
type LicensesCmd struct {
	StampRevision bool `name:"stamp-revision" help:"Include the revision note"`
}

func (l *LicensesCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	licenses, err := license.Resolve(cfg.Licenses, cfg.LicenseManifest)
	if err != nil {
		return err
	}

	var notes []string
	if l.StampRevision || cfg.StampRevision {
		target := cfg.Input
		if target == "" {
			target = "."
		}
		info, err := revision.Detect(target)
		if err != nil {
			slog.Warn("Revision unavailable", logfields.Path(target), logfields.Error(err))
		} else if !info.IsZero() {
			notes = append(notes, "revision: "+info.String())
		}
	}

	out := g.out()
	header := license.Header(licenses, notes...)
	if header == "" {
		fmt.Fprintln(out, "No licenses configured.")
		return nil
	}
	fmt.Fprint(out, header)
	return nil
}
