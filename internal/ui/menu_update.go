package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/colornames"
)

type palette struct {
	name   string
	fg, bg color.RGBA
}

var palettes = []palette{
	{"White on black", colornames.White, colornames.Black},
	{"Green phosphor", colornames.Limegreen, colornames.Black},
	{"Amber", colornames.Orange, colornames.Black},
	{"Black on white", colornames.Black, colornames.White},
	{"Slate", colornames.Lightsteelblue, colornames.Darkslategray},
}

// paletteIndex returns the current palette entry, 0 for custom colors.
func (a *App) paletteIndex() int {
	for i, p := range palettes {
		if p.fg == a.cfg.FG && p.bg == a.cfg.BG {
			return i
		}
	}
	return 0
}

func (a *App) updateMainMenu() {
	last := len(mainMenuItems) - 1
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < last {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case 0:
			a.showMenu = false
		case 1:
			a.reset()
			a.showMenu = false
		case 2:
			a.menuMode = "settings"
			a.menuIdx = 0
		case 3:
			a.menuMode = "keys"
			a.keysOff = 0
		case 4:
			a.quit = true
		}
	}
	// Back with Backspace
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.showMenu = false
	}
}

func (a *App) updateKeysMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		a.keysOff--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.keysOff++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
		a.menuIdx = 3
	}
}

func (a *App) updateSettingsMenu() {
	last := len(a.settingsItems()) - 1
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < last {
		a.menuIdx++
	}
	delta := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		delta = -1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		delta = 1
	}
	if delta != 0 {
		a.changeSetting(a.menuIdx, delta)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
		a.menuIdx = 2
	}
}

func (a *App) changeSetting(idx, delta int) {
	switch idx {
	case 0:
		a.m.SetCyclesPerFrame(a.m.Config().CyclesPerFrame + delta)
	case 1:
		n := len(palettes)
		p := palettes[(a.paletteIndex()+delta+n)%n]
		a.cfg.FG, a.cfg.BG = p.fg, p.bg
	case 2:
		a.m.SetMuted(!a.m.Muted())
	case 3:
		a.cfg.AudioLowLatency = !a.cfg.AudioLowLatency
		if a.stream != nil {
			a.stream.lowLatency.Store(a.cfg.AudioLowLatency)
		}
		a.applyPlayerBufferSize()
	}
}
