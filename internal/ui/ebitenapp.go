package ui

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// keyByRune maps the characters of emu.KeypadLayout to physical keys.
var keyByRune = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'q': ebiten.KeyQ, 'w': ebiten.KeyW, 'e': ebiten.KeyE, 'r': ebiten.KeyR,
	'a': ebiten.KeyA, 's': ebiten.KeyS, 'd': ebiten.KeyD, 'f': ebiten.KeyF,
	'z': ebiten.KeyZ, 'x': ebiten.KeyX, 'c': ebiten.KeyC, 'v': ebiten.KeyV,
}

// App is the ebiten game driving one machine.
type App struct {
	cfg    Config
	m      *emu.Machine
	logger *log.Logger
	tex    *ebiten.Image
	paused bool
	fast   bool
	quit   bool

	audioPlayer *audio.Player
	stream      *beeperStream

	// overlay/menu
	showMenu bool
	menuMode string // "main", "keys", "settings"
	menuIdx  int
	keysOff  int

	toastMsg   string
	toastUntil time.Time
	curW, curH int
}

// NewApp configures the window for m. Call Run to open it.
func NewApp(cfg Config, m *emu.Machine, logger *log.Logger) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.Width*cfg.Scale, ppu.Height*cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(emu.FrameRate)
	m.SetMuted(cfg.Mute)
	return &App{cfg: cfg, m: m, logger: logger, menuMode: "main"}
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() error {
	if err := a.setupAudio(a.m.Config().SampleRate); err != nil {
		a.logger.Warn("Audio disabled", log.Err(err))
	}
	err := ebiten.RunGame(a)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (a *App) Update() error {
	if a.quit {
		return ebiten.Termination
	}

	// Toggle menu (Escape)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if a.showMenu && a.menuMode != "main" {
			a.menuMode = "main"
			a.menuIdx = 0
		} else {
			a.showMenu = !a.showMenu
			a.menuMode = "main"
			a.menuIdx = 0
		}
	}
	if a.showMenu {
		switch a.menuMode {
		case "keys":
			a.updateKeysMenu()
		case "settings":
			a.updateSettingsMenu()
		default:
			a.updateMainMenu()
		}
		return nil
	}

	a.m.SetKeys(a.pollKeypad())

	// Pause toggle (P)
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}

	// Fast-forward (Tab): while held, run multiple frames per update
	fast := ebiten.IsKeyPressed(ebiten.KeyTab)
	if fast != a.fast {
		a.fast = fast
		a.applyPlayerBufferSize()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		muted := !a.m.Muted()
		a.m.SetMuted(muted)
		a.toast(map[bool]string{true: "Muted", false: "Sound on"}[muted])
	}

	// Reset (Backspace or F5)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) || inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.reset()
	}

	// Screenshot (F12)
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if path, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + filepath.Base(path))
		}
	}

	// Frame-step when paused (N)
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.stepFrame()
	}

	if !a.paused && !a.m.Halted() {
		n := 1
		if a.fast {
			n = 5
		}
		for i := 0; i < n; i++ {
			if !a.stepFrame() {
				break
			}
		}
	}
	a.capAudioQueue(a.m.Config().SampleRate)
	return nil
}

func (a *App) pollKeypad() emu.Keys {
	var keys emu.Keys
	for i, r := range emu.KeypadLayout {
		keys[i] = ebiten.IsKeyPressed(keyByRune[r])
	}
	return keys
}

// stepFrame advances one frame and reports whether the machine is still running.
func (a *App) stepFrame() bool {
	if err := a.m.StepFrame(); err != nil {
		a.toast("Halted: " + err.Error())
		return false
	}
	return true
}

func (a *App) reset() {
	if err := a.m.Reset(); err != nil {
		a.toast("Reset failed: " + err.Error())
		return
	}
	a.toast("Reset")
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.Width, ppu.Height)
	}
	a.tex.WritePixels(a.m.Framebuffer(a.cfg.FG, a.cfg.BG))

	// integer scale to the current window size
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := min(sw/ppu.Width, sh/ppu.Height)
	if scale < 1 {
		scale = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.GeoM.Translate(float64((sw-ppu.Width*scale)/2), float64((sh-ppu.Height*scale)/2))
	screen.DrawImage(a.tex, op)

	if a.showMenu {
		a.drawMenu(screen)
		return
	}

	switch {
	case a.m.Halted():
		a.drawHalted(screen)
	case a.paused:
		ebitenutil.DebugPrintAt(screen, "PAUSED  N: step  P: resume", 4, 4)
	case a.fast:
		ebitenutil.DebugPrintAt(screen, ">>", 4, 4)
	}
	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.truncateText(a.toastMsg, a.maxCharsForText(4)), 4, a.curH-18)
	}
}

func (a *App) Layout(outW, outH int) (int, int) {
	a.curW, a.curH = outW, outH
	return outW, outH
}

func (a *App) saveScreenshot() (string, error) {
	img := a.m.Image(a.cfg.FG, a.cfg.BG, a.cfg.Scale)
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.ScreenshotDir, fmt.Sprintf("screenshot_%s.png", ts))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", err
	}
	a.logger.Info("Screenshot saved", log.String("file", name))
	return name, nil
}
