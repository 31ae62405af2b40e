package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestKeyLatchHold(t *testing.T) {
	l := newKeyLatch(100 * time.Millisecond)
	start := time.Unix(1000, 0)

	assert.False(t, l.state(start)[5])

	l.press(5, start)
	assert.True(t, l.state(start)[5])
	assert.True(t, l.state(start.Add(99*time.Millisecond))[5])
	assert.False(t, l.state(start.Add(100*time.Millisecond))[5])

	// auto-repeat extends the hold
	l.press(5, start.Add(80*time.Millisecond))
	assert.True(t, l.state(start.Add(150*time.Millisecond))[5])
}

func TestKeyLatchIgnoresInvalidAndReleases(t *testing.T) {
	l := newKeyLatch(time.Second)
	now := time.Unix(1000, 0)
	l.press(-1, now)
	l.press(16, now)
	assert.Equal(t, emu.Keys{}, l.state(now))

	l.press(0, now)
	l.press(0xF, now)
	keys := l.state(now)
	assert.True(t, keys[0])
	assert.True(t, keys[0xF])

	l.releaseAll()
	assert.Equal(t, emu.Keys{}, l.state(now))
}

func TestRenderFrame(t *testing.T) {
	var f ppu.Frame
	f[0] = true           // (0,0) top only
	f[ppu.Width+1] = true // (1,1) bottom only
	f[2] = true           // (2,0)
	f[ppu.Width+2] = true // (2,1) both

	out := renderFrame(f)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, ppu.Height/2)
	first := []rune(lines[0])
	assert.Len(t, first, ppu.Width)
	assert.Equal(t, '▀', first[0])
	assert.Equal(t, '▄', first[1])
	assert.Equal(t, '█', first[2])
	assert.Equal(t, ' ', first[3])
	assert.Equal(t, strings.Repeat(" ", ppu.Width), lines[1])
}

func TestFormatRegisters(t *testing.T) {
	r := emu.Registers{I: 0x123, PC: 0x204, SP: 2, DT: 0x10, ST: 0x01, Opcode: 0x00E0}
	r.V[0xA] = 0x42
	out := formatRegisters(r)
	assert.Contains(t, out, "VA=42")
	assert.Contains(t, out, "I=123 PC=204 SP=2")
	assert.Contains(t, out, "DT=10 ST=01")
	assert.Contains(t, out, "00E0 ")
}

func TestFormatKeys(t *testing.T) {
	var k emu.Keys
	k[0xC] = true
	out := formatKeys(k)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, " 1   2   3  [C]", lines[0])
	assert.Equal(t, " A   0   B   F ", lines[3])
}

func TestKeyHandlerPressesMappedKey(t *testing.T) {
	term := New(emu.New(emu.Config{}, log.NewNop()), log.NewNop(), time.Hour)

	assert.NoError(t, term.keyHandler('W')(nil, nil))
	assert.NoError(t, term.keyHandler('4')(nil, nil))
	assert.NoError(t, term.keyHandler('p')(nil, nil))

	keys := term.keys.state(time.Now())
	assert.True(t, keys[0x5])
	assert.True(t, keys[0xC])
	pressed := 0
	for _, on := range keys {
		if on {
			pressed++
		}
	}
	assert.Equal(t, 2, pressed)
}
