package emu

import "github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/apu"

// DefaultCyclesPerFrame is the number of instructions run per 60 Hz frame.
const DefaultCyclesPerFrame = 10

// FrameRate is the host refresh rate the machine is driven at.
const FrameRate = 60

// Config contains settings that affect emulation behavior.
type Config struct {
	CyclesPerFrame int     // instructions per StepFrame
	Trace          bool    // log every executed instruction at debug level
	Clip           bool    // clip sprites at the screen edge instead of wrapping
	Seed           int64   // random seed for Cxnn; 0 seeds from the clock
	SampleRate     int     // beeper output rate in Hz
	Tone           float64 // beep frequency in Hz
	Volume         float64 // beep amplitude 0..1
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.CyclesPerFrame <= 0 {
		c.CyclesPerFrame = DefaultCyclesPerFrame
	}
	if c.SampleRate <= 0 {
		c.SampleRate = apu.DefaultSampleRate
	}
	if c.Tone <= 0 {
		c.Tone = apu.DefaultTone
	}
	if c.Volume <= 0 {
		c.Volume = apu.DefaultVolume
	}
}
