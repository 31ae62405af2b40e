package cli

import (
	"os"
	"testing"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/assert"
)

func parseArgs(t *testing.T, args ...string) (Options, error) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"chip8emu"}, args...)
	return ParseFlags()
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseArgs(t, "pong.ch8")
	assert.NoError(t, err)
	assert.Equal(t, "pong.ch8", opts.ROM)
	assert.Equal(t, 10, opts.Scale)
	assert.Equal(t, emu.DefaultCyclesPerFrame, opts.Cycles)
	assert.Equal(t, "white", opts.FG)
	assert.Equal(t, "black", opts.BG)
	assert.False(t, opts.Headless)
	assert.False(t, opts.Clip)
}

func TestParseFlags_Options(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts Options)
	}{
		{
			name: "rom flag",
			args: []string{"-rom", "maze.ch8"},
			check: func(t *testing.T, opts Options) {
				t.Helper()
				assert.Equal(t, "maze.ch8", opts.ROM)
			},
		},
		{
			name: "headless",
			args: []string{"-headless", "-frames", "60", "-expect", "0xDEADBEEF", "-outpng", "out.png", "ibm.ch8"},
			check: func(t *testing.T, opts Options) {
				t.Helper()
				assert.True(t, opts.Headless)
				assert.Equal(t, 60, opts.Frames)
				assert.Equal(t, "out.png", opts.PNGOut)
				assert.Equal(t, "0xDEADBEEF", opts.Expect)
			},
		},
		{
			name: "emulation",
			args: []string{"-cycles", "20", "-clip", "-seed", "7", "-trace", "-debug", "x.ch8"},
			check: func(t *testing.T, opts Options) {
				t.Helper()
				assert.Equal(t, 20, opts.Cycles)
				assert.True(t, opts.Clip)
				assert.Equal(t, int64(7), opts.Seed)
				assert.True(t, opts.Trace)
				assert.True(t, opts.Debug)
			},
		},
		{
			name: "trace enables debug",
			args: []string{"-trace", "x.ch8"},
			check: func(t *testing.T, opts Options) {
				t.Helper()
				assert.True(t, opts.Trace)
				assert.True(t, opts.Debug)
			},
		},
		{
			name: "colors",
			args: []string{"-fg", "#33ff66", "-bg", "darkslategray", "x.ch8"},
			check: func(t *testing.T, opts Options) {
				t.Helper()
				assert.Equal(t, "#33ff66", opts.FG)
				assert.Equal(t, "darkslategray", opts.BG)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(t, tt.args...)
			assert.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestParseFlags_VersionNeedsNoROM(t *testing.T) {
	opts, err := parseArgs(t, "-version")
	assert.NoError(t, err)
	assert.True(t, opts.Version)
}

func TestParseFlags_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no rom", nil},
		{"unknown flag", []string{"-nope", "x.ch8"}},
		{"flag after rom", []string{"x.ch8", "-debug"}},
		{"extra argument", []string{"x.ch8", "y.ch8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(t, tt.args...)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
		})
	}
}

func TestParseFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"tui and headless", []string{"-tui", "-headless", "x.ch8"}, "mutually exclusive"},
		{"scale", []string{"-scale", "0", "x.ch8"}, "invalid scale"},
		{"cycles", []string{"-cycles", "-1", "x.ch8"}, "invalid cycles"},
		{"volume", []string{"-volume", "2", "x.ch8"}, "volume"},
		{"fg", []string{"-fg", "nocolor", "x.ch8"}, "foreground"},
		{"bg", []string{"-bg", "#12", "x.ch8"}, "background"},
		{"expect", []string{"-expect", "xyz", "x.ch8"}, "invalid CRC32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(t, tt.args...)
			assert.ErrorContains(t, err, tt.msg)
			var usageErr *UsageError
			assert.False(t, errors.As(err, &usageErr))
		})
	}
}

func TestParseCRC(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"deadbeef", 0xDEADBEEF},
		{"0xDEADBEEF", 0xDEADBEEF},
		{" 1a2b3c4d ", 0x1A2B3C4D},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseCRC(tt.in)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseCRC("123456789")
	assert.Error(t, err)
}
