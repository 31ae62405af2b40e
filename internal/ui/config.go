package ui

import "image/color"

// Config contains window/input/audio related settings.
type Config struct {
	Title string     // window title
	Scale int        // integer upscaling factor
	FG    color.RGBA // lit pixel color
	BG    color.RGBA // unlit pixel color
	Mute  bool       // start with the beeper muted
	// Audio buffering
	AudioBufferMs   int  // desired queued audio in ms (approx)
	AudioLowLatency bool // hard-cap buffering for minimal latency
	ScreenshotDir   string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "chip8emu"
	}
	if c.Scale <= 0 {
		c.Scale = 10
	}
	if c.FG == (color.RGBA{}) {
		c.FG = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	}
	if c.BG == (color.RGBA{}) {
		c.BG = color.RGBA{A: 0xFF}
	}
	if c.AudioBufferMs <= 0 {
		c.AudioBufferMs = 60
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}
