// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/config"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/pkg/errors"
)

// Options contains all command line options of the emulator.
type Options struct {
	ROM   string
	Scale int
	Title string

	Cycles int
	Clip   bool
	Seed   int64

	FG     string
	BG     string
	Mute   bool
	Volume float64
	Tone   float64

	Trace bool
	Debug bool
	Quiet bool

	TUI      bool
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex

	Version bool
}

// ParseFlags parses the process command line.
func ParseFlags() (Options, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts Options
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	if err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if opts.Version {
		return opts, nil
	}

	args := flags.Args()
	if opts.ROM == "" && len(args) > 0 {
		opts.ROM = args[0]
		args = args[1:]
	}
	if opts.ROM == "" {
		return opts, &UsageError{flags: flags, msg: "no ROM file given"}
	}
	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}
	if err := validateOptions(opts); err != nil {
		return opts, err
	}
	// trace lines are logged at debug level
	if opts.Trace {
		opts.Debug = true
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage line and flag defaults to stdout.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8emu [options] <ROM file>\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks that the ROM file is the last argument.
func validateArgs(flags *flag.FlagSet, args []string) error {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("argument %s found after the ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 0 {
		return &UsageError{flags: flags, msg: fmt.Sprintf("unexpected arguments: %s", strings.Join(args, " "))}
	}
	return nil
}

// validateOptions checks value ranges and option combinations.
func validateOptions(opts Options) error {
	if opts.TUI && opts.Headless {
		return errors.New("-tui and -headless are mutually exclusive")
	}
	if opts.Scale <= 0 {
		return errors.Errorf("invalid scale %d", opts.Scale)
	}
	if opts.Cycles <= 0 {
		return errors.Errorf("invalid cycles per frame %d", opts.Cycles)
	}
	if opts.Volume < 0 || opts.Volume > 1 {
		return errors.Errorf("volume %.2f out of range 0..1", opts.Volume)
	}
	if _, err := config.ParseColor(opts.FG); err != nil {
		return errors.Wrap(err, "foreground")
	}
	if _, err := config.ParseColor(opts.BG); err != nil {
		return errors.Wrap(err, "background")
	}
	if opts.Expect != "" {
		if _, err := ParseCRC(opts.Expect); err != nil {
			return err
		}
	}
	return nil
}

// ParseCRC parses a CRC32 given as hex, with or without a 0x prefix.
func ParseCRC(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Errorf("invalid CRC32 %q", s)
	}
	return uint32(v), nil
}

func readOptionFlags(flags *flag.FlagSet, opts *Options) {
	flags.StringVar(&opts.ROM, "rom", "", "path to the CHIP-8 program (.ch8)")
	flags.IntVar(&opts.Scale, "scale", 10, "window scale")
	flags.StringVar(&opts.Title, "title", "chip8emu", "window title")
	flags.IntVar(&opts.Cycles, "cycles", emu.DefaultCyclesPerFrame, "instructions executed per 60 Hz frame")
	flags.BoolVar(&opts.Clip, "clip", false, "clip sprites at the screen edges instead of wrapping")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed for RND, 0 seeds from the clock")
	flags.StringVar(&opts.FG, "fg", "white", "foreground color name or #rrggbb")
	flags.StringVar(&opts.BG, "bg", "black", "background color name or #rrggbb")
	flags.BoolVar(&opts.Mute, "mute", false, "disable the beeper")
	flags.Float64Var(&opts.Volume, "volume", 0.2, "beeper volume 0..1")
	flags.Float64Var(&opts.Tone, "tone", 440, "beeper frequency in Hz")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")
	flags.BoolVar(&opts.TUI, "tui", false, "run in the terminal instead of a window")
	flags.BoolVar(&opts.Headless, "headless", false, "run without a window")
	flags.IntVar(&opts.Frames, "frames", 300, "frames to run in headless mode")
	flags.StringVar(&opts.PNGOut, "outpng", "", "write the last framebuffer to a PNG file (headless)")
	flags.StringVar(&opts.Expect, "expect", "", "assert the framebuffer CRC32 (hex, headless)")
	flags.BoolVar(&opts.Version, "version", false, "print version and exit")
}
