package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/history"
)

// HistoryCmd lists recent builds recorded in history.path.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Number of builds to show (0 for all)"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.ValidationError("build history is not configured").
			WithContext("key", "history.path").
			Build()
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	out := g.out()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOUTCOME\tDURATION\tSCRIPTS\tSTYLESHEETS\tBUNDLE\tREVISION\tOUTPUT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime),
			e.Outcome,
			e.Duration.Truncate(time.Millisecond),
			e.Scripts,
			e.Stylesheets,
			e.BundleBytes,
			orDash(e.Revision),
			e.Output,
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
