package clicmds

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/boxker/automation/browser"
	"gitlab.com/boxker/boxk"
)

func LeaserFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "config to use for chrome_path, profile_dir, headless and window size",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "socket",
			Usage: "unix socket to listen on",
			Value: browser.DefaultSocket,
		},
	}
}

// Leaser runs a browser leaser service that run commands on this host can
// share by setting leaser_socket
func Leaser(ctx *cli.Context) error {
	cfg := boxk.DefaultConfig()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = boxk.LoadConfig(path); err != nil {
			return err
		}
	}

	serveContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			log.Info().Msg("Ctrl-C Pressed, shutting down leaser")
			cancel()
		case <-serveContext.Done():
		}
	}()

	return browser.ServeLeaser(serveContext, ctx.String("socket"), browser.NewLocalLeaser(&cfg.Browser))
}
