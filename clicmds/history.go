package clicmds

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/boxker/store"
)

func HistoryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory for run history",
			Value: "boxkerdata",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "number of runs to list, 0 for all",
			Value: 20,
		},
		&cli.StringFlag{
			Name:  "export",
			Usage: "write every run to this json file (history.json)",
			Value: "",
		},
	}
}

// History lists previous runs and optionally exports them
func History(ctx *cli.Context) error {
	history := store.NewHistoryStore(filepath.Join(ctx.String("datadir"), "history"))
	if err := history.Init(); err != nil {
		return errors.Wrap(err, "failed to open history")
	}
	defer history.Close()

	if path := ctx.String("export"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", path)
		}
		defer f.Close()
		if err := history.ExportJSON(f); err != nil {
			return errors.Wrap(err, "failed to export history")
		}
		fmt.Fprintf(ctx.App.Writer, "exported history to %s\n", path)
	}

	runs, err := history.Runs(ctx.Int("limit"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCASE\tBROWSER\tSTATUS\tSTARTED\tPASSED\tFAILED\tSKIPPED")
	for _, run := range runs {
		passed, failed, skipped := run.Counts()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n", run.ID, run.Name, run.Browser, run.StatusText(),
			run.Started.Format(time.RFC3339), passed, failed, skipped)
	}
	return w.Flush()
}
