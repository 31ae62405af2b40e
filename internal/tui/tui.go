// Package tui runs the machine inside a terminal using gocui: a display view drawn
// with half-block characters, a register view and a keypad view.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/jroimartin/gocui"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// DefaultHold is how long a key stays pressed after the terminal reported it.
const DefaultHold = 150 * time.Millisecond

const (
	viewDisplay   = "display"
	viewRegisters = "registers"
	viewKeys      = "keypad"
	viewStatus    = "status"
)

// Terminal is the terminal frontend.
type Terminal struct {
	m      *emu.Machine
	logger *log.Logger
	keys   *keyLatch

	mu     sync.Mutex // guards paused and status across the gocui and ticker goroutines
	paused bool
	status string
}

// New returns a terminal frontend for m. Keys stay pressed for hold after each key
// event; a non-positive hold selects DefaultHold.
func New(m *emu.Machine, logger *log.Logger, hold time.Duration) *Terminal {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Terminal{m: m, logger: logger, keys: newKeyLatch(hold)}
}

// Run blocks until the user quits with Ctrl+C or ctx is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return errors.Wrap(err, "creating terminal UI")
	}
	defer g.Close()

	g.SetManagerFunc(layout)
	if err := t.bindKeys(g); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go t.loop(ctx, g)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (t *Terminal) bindKeys(g *gocui.Gui) error {
	for _, r := range emu.KeypadLayout {
		runes := []rune{r}
		if up := unicode.ToUpper(r); up != r {
			runes = append(runes, up)
		}
		for _, ch := range runes {
			if err := g.SetKeybinding("", ch, gocui.ModNone, t.keyHandler(ch)); err != nil {
				return err
			}
		}
	}

	bindings := []struct {
		key     interface{}
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, quit},
		{'p', t.togglePause},
		{'n', t.stepFrame},
		{gocui.KeyCtrlR, t.reset},
	}
	for _, b := range bindings {
		if err := g.SetKeybinding("", b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

// keyHandler presses the keypad key bound to ch.
func (t *Terminal) keyHandler(ch rune) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		if key, ok := emu.KeyForRune(ch); ok {
			t.keys.press(key, time.Now())
		}
		return nil
	}
}

// loop drives the machine at 60 Hz and redraws through g.Update, the only
// goroutine-safe way to touch gocui views.
func (t *Terminal) loop(ctx context.Context, g *gocui.Gui) {
	ticker := time.NewTicker(time.Second / emu.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
			return
		case now := <-ticker.C:
			t.m.SetKeys(t.keys.state(now))
			t.mu.Lock()
			paused := t.paused
			t.mu.Unlock()
			if !paused && !t.m.Halted() {
				if err := t.m.StepFrame(); err != nil {
					t.setStatus("HALTED: " + err.Error())
				}
			}
			g.Update(t.draw)
		}
	}
}

func (t *Terminal) draw(g *gocui.Gui) error {
	if v, err := g.View(viewDisplay); err == nil && t.m.TakeDirty() {
		v.Clear()
		fmt.Fprint(v, renderFrame(t.m.Display()))
	}
	if v, err := g.View(viewRegisters); err == nil {
		v.Clear()
		fmt.Fprint(v, formatRegisters(t.m.Registers()))
	}
	if v, err := g.View(viewKeys); err == nil {
		v.Clear()
		fmt.Fprint(v, formatKeys(t.m.Keys()))
	}
	if v, err := g.View(viewStatus); err == nil {
		v.Clear()
		t.mu.Lock()
		status, paused := t.status, t.paused
		t.mu.Unlock()
		if status == "" {
			status = fmt.Sprintf("frame %d", t.m.Frames())
			if paused {
				status += "  PAUSED"
			}
		}
		fmt.Fprintf(v, "%s  |  p: pause  n: step  ^R: reset  ^C: quit", status)
	}
	return nil
}

func (t *Terminal) setStatus(s string) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *Terminal) togglePause(*gocui.Gui, *gocui.View) error {
	t.mu.Lock()
	t.paused = !t.paused
	t.mu.Unlock()
	return nil
}

func (t *Terminal) stepFrame(*gocui.Gui, *gocui.View) error {
	t.mu.Lock()
	paused := t.paused
	t.mu.Unlock()
	if !paused {
		return nil
	}
	if err := t.m.StepFrame(); err != nil {
		t.setStatus("HALTED: " + err.Error())
	}
	return nil
}

func (t *Terminal) reset(*gocui.Gui, *gocui.View) error {
	t.keys.releaseAll()
	if err := t.m.Reset(); err != nil {
		t.setStatus("reset failed: " + err.Error())
		return nil
	}
	t.logger.Info("Machine reset")
	t.setStatus("")
	return nil
}

// gocui layout: display on the left, registers and keypad on the right, status below.
func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	dispW, dispH := ppu.Width+1, ppu.Height/2+1
	sideX := dispW + 1
	if sideX+24 > maxX {
		sideX = maxX - 24
	}

	if v, err := g.SetView(viewDisplay, 0, 0, dispW, dispH); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "CHIP-8"
	}
	if v, err := g.SetView(viewRegisters, sideX, 0, maxX-1, 8); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
	}
	if v, err := g.SetView(viewKeys, sideX, 9, maxX-1, 14); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Keypad"
	}
	if v, err := g.SetView(viewStatus, 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
	}
	return nil
}

func quit(*gocui.Gui, *gocui.View) error {
	return gocui.ErrQuit
}
