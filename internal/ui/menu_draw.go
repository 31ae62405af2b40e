package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var mainMenuItems = []string{"Resume", "Reset", "Settings", "Keybindings", "Quit"}

func (a *App) drawMenu(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(a.curW), float32(a.curH), color.RGBA{A: 0xC0}, false)
	switch a.menuMode {
	case "keys":
		a.drawKeysMenu(screen)
	case "settings":
		a.drawSettingsMenu(screen)
	default:
		a.drawMainMenu(screen)
	}
}

func (a *App) drawMainMenu(screen *ebiten.Image) {
	title := "Menu:"
	if rom := a.m.ROM(); rom != nil {
		title = "Menu: " + rom.Info.String()
	}
	ebitenutil.DebugPrintAt(screen, a.truncateText(title, a.maxCharsForText(10)), 10, 10)
	for i, s := range mainMenuItems {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 24+i*14)
	}
}

func (a *App) keyRows() []string {
	rows := make([]string, 0, 11)
	// keypad grid in COSMAC VIP order
	grid := [4][4]int{{0x1, 0x2, 0x3, 0xC}, {0x4, 0x5, 0x6, 0xD}, {0x7, 0x8, 0x9, 0xE}, {0xA, 0x0, 0xB, 0xF}}
	for _, row := range grid {
		var sb strings.Builder
		for _, k := range row {
			fmt.Fprintf(&sb, "%c=%X  ", strings.ToUpper(string(emu.KeypadLayout[k]))[0], k)
		}
		rows = append(rows, strings.TrimSpace(sb.String()))
	}
	return append(rows,
		"P: Pause",
		"N: Step frame (when paused)",
		"Tab: Fast-forward",
		"M: Mute",
		"Backspace/F5: Reset",
		"F12: Screenshot",
		"Esc: Open/Close Menu",
	)
}

func (a *App) drawKeysMenu(screen *ebiten.Image) {
	title := "Keybindings (Up/Down to scroll, Backspace/Esc to return)"
	cursorY := 10
	for _, w := range a.wrapText(title, a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += 14
	}
	rows := a.keyRows()
	baseY := cursorY + 4
	maxRows := (a.curH - baseY) / 14
	if maxRows < 1 {
		maxRows = 1
	}
	if a.keysOff < 0 {
		a.keysOff = 0
	}
	if a.keysOff > len(rows)-1 {
		a.keysOff = len(rows) - 1
	}
	end := min(a.keysOff+maxRows, len(rows))
	maxChars := a.maxCharsForText(10)
	for i := a.keysOff; i < end; i++ {
		ebitenutil.DebugPrintAt(screen, a.truncateText(rows[i], maxChars), 10, baseY+(i-a.keysOff)*14)
	}
	// scroll indicators
	if a.keysOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, baseY)
	}
	if end < len(rows) {
		ebitenutil.DebugPrintAt(screen, "v", 2, baseY+(maxRows-1)*14)
	}
}

func (a *App) settingsItems() []string {
	onOff := map[bool]string{true: "On", false: "Off"}
	return []string{
		fmt.Sprintf("Speed: %d cycles/frame", a.m.Config().CyclesPerFrame),
		fmt.Sprintf("Palette: %s", palettes[a.paletteIndex()].name),
		fmt.Sprintf("Sound: %s", onOff[!a.m.Muted()]),
		fmt.Sprintf("Low-Latency Audio: %s", onOff[a.cfg.AudioLowLatency]),
	}
}

func (a *App) drawSettingsMenu(screen *ebiten.Image) {
	title := "Settings (Up/Down select; Left/Right change; Backspace/Esc: back)"
	cursorY := 10
	for _, w := range a.wrapText(title, a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += 14
	}
	for i, item := range a.settingsItems() {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		line := a.truncateText(prefix+item, a.maxCharsForText(10))
		ebitenutil.DebugPrintAt(screen, line, 10, cursorY+i*14)
	}
}

func (a *App) drawHalted(screen *ebiten.Image) {
	msg := "HALTED"
	if err := a.m.Err(); err != nil {
		msg += ": " + err.Error()
	}
	cursorY := 4
	for _, w := range a.wrapText(msg, a.maxCharsForText(4)) {
		ebitenutil.DebugPrintAt(screen, w, 4, cursorY)
		cursorY += 14
	}
	ebitenutil.DebugPrintAt(screen, "Backspace: reset", 4, cursorY)
}

// debug font glyphs are 6 pixels wide
func (a *App) maxCharsForText(margin int) int {
	n := (a.curW - 2*margin) / 6
	if n < 1 {
		n = 1
	}
	return n
}

func (a *App) truncateText(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return s[:maxChars]
	}
	return s[:maxChars-3] + "..."
}

func (a *App) wrapText(s string, maxChars int) []string {
	var lines []string
	var cur string
	for _, w := range strings.Fields(s) {
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) <= maxChars:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
