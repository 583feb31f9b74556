package main

import (
	"os"

	"github.com/Carmen-Shannon/oxy-trace/cmd"
	"github.com/Carmen-Shannon/oxy-trace/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxy-trace")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "oxy-trace"
	app.Usage = "path trace a Cornell box on the GPU"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringSliceFlag{
			Name:  "log",
			Usage: "set one package's level as module=level, e.g. profiler=info (repeatable)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "open a window and trace the scene",
			Description: `
Trace the Cornell box in a compute pass and present the result in a window.

The direct strategy draws one instanced quad per pixel straight from the
result buffer. The blit strategy copies the result into a texture and samples
it over a full-screen triangle. Press space to redraw and escape to quit.`,
			Flags:  cmd.RenderFlags,
			Action: cmd.Render,
		},
		{
			Name:  "list-adapters",
			Usage: "list the adapter picked for each power preference",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "software",
					Usage: "request the software fallback adapter",
				},
			},
			Action: cmd.ListAdapters,
		},
		{
			Name:   "check-kernels",
			Usage:  "pre-process and compile the embedded kernels offline",
			Action: cmd.CheckKernels,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
