package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/boxker/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "boxker"
	app.Version = "0.1"
	app.Usage = "Run browser test cases and report on them"
	app.Commands = []*cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "run test cases",
			Action:  clicmds.Run,
			Flags:   clicmds.RunFlags(),
		},
		{
			Name:    "history",
			Aliases: []string{"h"},
			Usage:   "list and export previous runs",
			Action:  clicmds.History,
			Flags:   clicmds.HistoryFlags(),
		},
		{
			Name:      "locate",
			Aliases:   []string{"l"},
			Usage:     "check locator strings",
			ArgsUsage: "<strategy>,<value> ...",
			Action:    clicmds.Locate,
		},
		{
			Name:   "leaser",
			Usage:  "serve chrome browsers to run commands over a unix socket",
			Action: clicmds.Leaser,
			Flags:  clicmds.LeaserFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
