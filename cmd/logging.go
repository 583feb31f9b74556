package cmd

import (
	"github.com/Carmen-Shannon/oxy-trace/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxy-trace")

// setupLogging applies -v, -vv and any --log module=level overrides.
func setupLogging(ctx *cli.Context) error {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	return log.SetModuleLevels(ctx.GlobalStringSlice("log"))
}
