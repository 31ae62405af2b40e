// Package main implements the main entry point of the CHIP-8 emulator
package main

import (
	"context"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cli"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/config"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/tui"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ui"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			logger.Error(usageErr.Error())
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return
	}

	// the terminal UI owns stdout, keep the logger to errors only
	logger := config.CreateLogger(opts.Debug && !opts.TUI, opts.Quiet || opts.TUI)
	printBanner(logger, opts)

	m := emu.New(emu.Config{
		CyclesPerFrame: opts.Cycles,
		Trace:          opts.Trace,
		Clip:           opts.Clip,
		Seed:           opts.Seed,
		Tone:           opts.Tone,
		Volume:         opts.Volume,
	}, logger)
	if err := m.LoadROMFromFile(opts.ROM); err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	switch {
	case opts.Headless:
		if err := runHeadless(ctx, logger, m, opts); err != nil {
			logger.Fatal("Headless run failed", log.Err(err))
		}

	case opts.TUI:
		if err := tui.New(m, logger, tui.DefaultHold).Run(ctx); err != nil {
			logger.Fatal("Terminal UI failed", log.Err(err))
		}

	default:
		fg, _ := config.ParseColor(opts.FG)
		bg, _ := config.ParseColor(opts.BG)
		uiCfg := ui.Config{
			Title: opts.Title + " - " + m.ROM().Info.Name,
			Scale: opts.Scale,
			FG:    fg,
			BG:    bg,
			Mute:  opts.Mute,
		}
		if err := ui.NewApp(uiCfg, m, logger).Run(); err != nil {
			logger.Fatal("Window closed with error", log.Err(err))
		}
	}
}

func printBanner(logger *log.Logger, opts cli.Options) {
	if opts.Quiet {
		return
	}
	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}
	logger.Info("chip8emu", log.String("version", versionString))
}

// runHeadless runs a fixed number of frames as fast as possible, then reports the
// framebuffer checksum. A trap before the last frame is an error.
func runHeadless(ctx context.Context, logger *log.Logger, m *emu.Machine, opts cli.Options) error {
	frames := opts.Frames
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.StepFrame(); err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
	}
	dur := time.Since(start)

	crc := m.FrameCRC32()
	fps := float64(frames) / dur.Seconds()
	logger.Info("Headless run done",
		log.Int("frames", frames),
		log.String("elapsed", dur.Truncate(time.Millisecond).String()),
		log.String("fps", fmt.Sprintf("%.2f", fps)),
		log.String("fb_crc32", fmt.Sprintf("%08x", crc)))

	if opts.PNGOut != "" {
		fg, _ := config.ParseColor(opts.FG)
		bg, _ := config.ParseColor(opts.BG)
		if err := saveFramePNG(m, fg, bg, opts.Scale, opts.PNGOut); err != nil {
			return errors.Wrap(err, "write PNG")
		}
		logger.Info("Wrote framebuffer", log.String("file", opts.PNGOut))
	}

	if opts.Expect != "" {
		want, err := cli.ParseCRC(opts.Expect)
		if err != nil {
			return err
		}
		if crc != want {
			return errors.Errorf("checksum mismatch: got %08x, want %08x", crc, want)
		}
	}
	return nil
}

func saveFramePNG(m *emu.Machine, fg, bg color.RGBA, scale int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, m.Image(fg, bg, scale))
}
