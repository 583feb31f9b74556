package cmd

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/urfave/cli"
)

// RenderFlags are the flags of the render command.
var RenderFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "width",
		Value: 600,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 600,
		Usage: "frame height",
	},
	cli.IntFlag{
		Name:  "spp",
		Value: 32,
		Usage: "samples per pixel",
	},
	cli.StringFlag{
		Name:  "strategy, s",
		Value: transfer.DirectPull.String(),
		Usage: "result transfer strategy: direct or blit",
	},
	cli.BoolTFlag{
		Name:  "vsync",
		Usage: "wait for vertical blank when presenting",
	},
	cli.BoolFlag{
		Name:  "software",
		Usage: "force the software fallback adapter",
	},
	cli.BoolFlag{
		Name:  "high-performance",
		Usage: "prefer the discrete GPU over the integrated one",
	},
	cli.BoolFlag{
		Name:  "profile",
		Usage: "log frame timings and a summary on exit",
	},
}

// Render opens the window and traces the Cornell box until the window is closed.
func Render(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	settings, err := settingsFromFlags(ctx.Int("width"), ctx.Int("height"), ctx.Int("spp"), ctx.String("strategy"))
	if err != nil {
		return err
	}

	presentMode := renderer.PresentModeUncapped
	if ctx.BoolT("vsync") {
		presentMode = renderer.PresentModeVSync
	}
	power := renderer.PowerLow
	if ctx.Bool("high-performance") {
		power = renderer.PowerHigh
	}

	e, err := engine.NewEngine(
		engine.WithSettings(settings),
		engine.WithRendererOptions(
			renderer.WithPresentMode(presentMode),
			renderer.WithPowerPreference(power),
			renderer.WithForceSoftwareRenderer(ctx.Bool("software")),
		),
		engine.WithProfiling(ctx.Bool("profile")),
	)
	if err != nil {
		return err
	}
	defer e.Release()

	logger.Notice("press space to redraw, escape to quit")
	e.Run()
	return nil
}

// settingsFromFlags converts the render flags into render settings that fit the device limits.
func settingsFromFlags(width, height, spp int, strategyName string) (render_config.Settings, error) {
	limit := int(render_config.BaselineLimits.MaxTextureDimension2D)
	if width <= 0 || height <= 0 {
		return render_config.Settings{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if width > limit || height > limit {
		return render_config.Settings{}, fmt.Errorf("%w: %dx%d, sides are limited to %d", render_config.ErrFrameTooLarge, width, height, limit)
	}
	if spp <= 0 || uint64(spp) > math.MaxUint32 {
		return render_config.Settings{}, errors.New("samples per pixel must be a positive 32-bit value")
	}
	strategy, err := transfer.ParseStrategy(strategyName)
	if err != nil {
		return render_config.Settings{}, err
	}
	settings := render_config.NewSettings(
		render_config.WithStrategy(strategy),
		render_config.WithSize(uint32(width), uint32(height)),
		render_config.WithSamplesPerPixel(uint32(spp)),
	)
	if err := settings.Validate(render_config.BaselineLimits); err != nil {
		return render_config.Settings{}, err
	}
	return settings, nil
}
