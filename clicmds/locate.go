package clicmds

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/boxker/boxk"
)

// Locate normalizes each locator argument and prints its strategy and value
func Locate(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("no locators given, expected <strategy>,<value>")
	}

	invalid := 0
	for _, arg := range ctx.Args().Slice() {
		loc, err := boxk.ParseLocator(arg)
		if err != nil {
			fmt.Fprintf(ctx.App.Writer, "%s\tinvalid: %s\n", arg, err)
			invalid++
			continue
		}
		fmt.Fprintf(ctx.App.Writer, "%s\t%s\t%s\n", arg, loc.Strategy, loc.Value)
	}
	if invalid > 0 {
		return errors.Wrapf(boxk.ErrInvalidLocatorStrategy, "%d invalid locators", invalid)
	}
	return nil
}
