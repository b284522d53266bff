package clicmds

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/boxker/box"
	"gitlab.com/boxker/boxk"
	"gitlab.com/boxker/data"
	"gitlab.com/boxker/logging"
	"gitlab.com/boxker/report"
	"gitlab.com/boxker/runner"
	"gitlab.com/boxker/store"
)

// driverFactory starts the browser for each data row
var driverFactory runner.DriverFactory = box.New

func RunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "config to use",
			Value: "",
		},
		&cli.StringSliceFlag{
			Name:     "case",
			Usage:    "test case yaml file, may be repeated",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "browser",
			Usage: "Chrome, Firefox or Ie, overrides the config",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory for run history",
			Value: "boxkerdata",
		},
		&cli.StringFlag{
			Name:  "reportdir",
			Usage: "directory reports and screenshots are written to",
			Value: "",
		},
		&cli.BoolFlag{
			Name:  "email",
			Usage: "email the report of each case",
			Value: false,
		},
		&cli.StringSliceFlag{
			Name:  "to",
			Usage: "report recipients, ; separated lists are accepted",
		},
	}
}

func loadConfig(ctx *cli.Context) (*boxk.Config, error) {
	var cfg *boxk.Config
	if path := ctx.String("config"); path == "" {
		cfg = boxk.DefaultConfig()
		cfg.DataPath = ctx.String("datadir")
	} else {
		var err error
		if cfg, err = boxk.LoadConfig(path); err != nil {
			return nil, err
		}
		// flags only override what was set explicitly
		if ctx.IsSet("datadir") {
			cfg.DataPath = ctx.String("datadir")
		}
	}

	if ctx.String("browser") != "" {
		cfg.Browser.Name = ctx.String("browser")
	}
	if ctx.String("reportdir") != "" {
		cfg.Report.Dir = ctx.String("reportdir")
	}
	if ctx.Bool("email") {
		cfg.Report.Email = true
	}
	if to := ctx.StringSlice("to"); len(to) > 0 {
		cfg.Report.To = report.SplitRecipients(to...)
	}
	return cfg, nil
}

// Run executes test cases
func Run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := logging.Init(&cfg.Log); err != nil {
		return err
	}
	defer logging.Close()

	cases := make([]*runner.Case, 0)
	for _, path := range ctx.StringSlice("case") {
		c, err := runner.LoadCase(path)
		if err != nil {
			return err
		}
		cases = append(cases, c)
	}

	history := store.NewHistoryStore(filepath.Join(cfg.DataPath, "history"))
	if err := history.Init(); err != nil {
		return errors.Wrap(err, "failed to open history")
	}
	defer history.Close()

	r := runner.New(cfg, history)
	r.SetDriverFactory(driverFactory)
	if cfg.Report.Email {
		r.SetMailer(report.NewMailer(&cfg.SMTP))
	}

	runContext, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Database.Host != "" {
		db, err := data.OpenDB(runContext, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		r.SetDB(db)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			log.Info().Msg("Ctrl-C Pressed, finishing the current step")
			cancel()
		case <-runContext.Done():
		}
	}()

	log.Info().Int("cases", len(cases)).Msg("Starting boxker")
	failed := 0
	for _, tc := range cases {
		run, path, err := r.Execute(runContext, tc)
		if err != nil {
			log.Error().Err(err).Str("case", tc.Name).Msg("case did not complete")
			failed++
			continue
		}
		passed, stepsFailed, skipped := run.Counts()
		log.Info().Str("case", run.Name).Str("status", run.StatusText()).Int("passed", passed).
			Int("failed", stepsFailed).Int("skipped", skipped).Str("report", path).Msg("case result")
		if run.Status != boxk.StatusPassed {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d cases failed", failed, len(cases))
	}
	return nil
}
