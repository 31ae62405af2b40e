package tui

import (
	"sync"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
)

// keyLatch turns terminal key presses into held keys. Terminals report no key-up, so
// a key counts as held until hold has passed since its last press; auto-repeat keeps
// a held key alive.
type keyLatch struct {
	mu        sync.Mutex
	hold      time.Duration
	pressedAt [16]time.Time
}

func newKeyLatch(hold time.Duration) *keyLatch {
	return &keyLatch{hold: hold}
}

func (l *keyLatch) press(key int, now time.Time) {
	if key < 0 || key >= len(l.pressedAt) {
		return
	}
	l.mu.Lock()
	l.pressedAt[key] = now
	l.mu.Unlock()
}

// state returns the keys still within their hold window at now.
func (l *keyLatch) state(now time.Time) emu.Keys {
	l.mu.Lock()
	defer l.mu.Unlock()
	var keys emu.Keys
	for i, t := range l.pressedAt {
		keys[i] = !t.IsZero() && now.Sub(t) < l.hold
	}
	return keys
}

func (l *keyLatch) releaseAll() {
	l.mu.Lock()
	l.pressedAt = [16]time.Time{}
	l.mu.Unlock()
}
