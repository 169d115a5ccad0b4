package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagebundle/cmd/pagebundle/commands"
	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagebundle"),
		kong.Description("Bundle and minify the scripts and stylesheets referenced by an HTML page."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errors.ExitInternal
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errors.ExitUsage
	}

	err = kctx.Run(&commands.Global{Stdout: os.Stdout}, cli)
	return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Handle(os.Stderr, err)
}
