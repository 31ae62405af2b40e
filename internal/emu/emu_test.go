package emu

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

func newMachine(t *testing.T, cfg Config, words ...uint16) *Machine {
	t.Helper()
	return newMachineWithLogger(t, cfg, log.NewTestLogger(t), words...)
}

// newMachineWithLogger is used by tests that halt the CPU; the test logger fails
// the test on error records.
func newMachineWithLogger(t *testing.T, cfg Config, logger *log.Logger, words ...uint16) *Machine {
	t.Helper()
	data := make([]byte, 0, len(words)*2)
	for _, w := range words {
		data = append(data, byte(w>>8), byte(w))
	}
	rom, err := cart.New("test.ch8", data)
	assert.NoError(t, err)
	m := New(cfg, logger)
	assert.NoError(t, m.LoadROM(rom))
	return m
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	assert.Equal(t, DefaultCyclesPerFrame, cfg.CyclesPerFrame)
	assert.Equal(t, 48000, cfg.SampleRate)

	cfg = Config{CyclesPerFrame: 3}
	cfg.Defaults()
	assert.Equal(t, 3, cfg.CyclesPerFrame)
}

func TestStepFrameWithoutROM(t *testing.T) {
	m := New(Config{}, log.NewTestLogger(t))
	assert.True(t, errors.Is(m.StepFrame(), ErrNoROM))
	assert.True(t, errors.Is(m.Step(), ErrNoROM))
	assert.True(t, errors.Is(m.Reset(), ErrNoROM))
}

func TestStepFrameRunsCycles(t *testing.T) {
	// ADD V0,1 repeated via JP 200
	m := newMachine(t, Config{CyclesPerFrame: 10}, 0x7001, 0x1200)
	assert.NoError(t, m.StepFrame())
	assert.Equal(t, byte(5), m.Registers().V[0])
	assert.Equal(t, uint64(1), m.Frames())

	assert.NoError(t, m.StepFrame())
	assert.Equal(t, byte(10), m.Registers().V[0])
}

func TestSetCyclesPerFrame(t *testing.T) {
	m := newMachine(t, Config{}, 0x7001, 0x1200)
	m.SetCyclesPerFrame(4)
	assert.Equal(t, 4, m.Config().CyclesPerFrame)
	assert.NoError(t, m.StepFrame())
	assert.Equal(t, byte(2), m.Registers().V[0])

	m.SetCyclesPerFrame(0)
	assert.Equal(t, 1, m.Config().CyclesPerFrame)
}

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithConfig(log.Config{
		Output:     buf,
		TimeFormat: "-",
	})
}

func TestStepFrameStopsOnTrap(t *testing.T) {
	var buf bytes.Buffer
	m := newMachineWithLogger(t, Config{CyclesPerFrame: 10}, bufferLogger(&buf), 0x6001, 0x00EE)
	err := m.StepFrame()
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
	assert.True(t, m.Halted())
	assert.Equal(t, uint16(0x202), m.Registers().PC)
	assert.Equal(t, uint64(0), m.Frames())

	assert.Equal(t, err, m.StepFrame())
	assert.Equal(t, err, m.Err())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "CPU halted"))
	assert.Contains(t, out, "ret")
}

func TestStepReportsUnknownOpcode(t *testing.T) {
	var buf bytes.Buffer
	m := newMachineWithLogger(t, Config{}, bufferLogger(&buf), 0xE1FF)
	err := m.Step()
	assert.True(t, errors.Is(err, cpu.ErrUnknownOpcode))
	assert.True(t, m.Halted())
	assert.Contains(t, buf.String(), "CPU halted")
	assert.Contains(t, buf.String(), "???")
	assert.NotContains(t, buf.String(), "??? V1")
}

func TestResetClearsTrap(t *testing.T) {
	m := newMachineWithLogger(t, Config{}, log.NewNop(), 0xFFFF)
	assert.Error(t, m.StepFrame())

	assert.NoError(t, m.Reset())
	assert.False(t, m.Halted())
	assert.Equal(t, uint16(0x200), m.Registers().PC)
}

func TestKeysSurviveReset(t *testing.T) {
	// LD V3,K then spin
	m := newMachine(t, Config{CyclesPerFrame: 1}, 0xF30A, 0x1202)
	assert.NoError(t, m.StepFrame())
	assert.Equal(t, uint16(0x200), m.Registers().PC)

	var keys Keys
	keys[0xB] = true
	m.SetKeys(keys)
	assert.NoError(t, m.Reset())
	assert.True(t, m.Keys()[0xB])
	assert.NoError(t, m.StepFrame())
	assert.Equal(t, byte(0xB), m.Registers().V[3])
}

func TestSetKeyInvalid(t *testing.T) {
	m := newMachine(t, Config{}, 0x1200)
	assert.True(t, errors.Is(m.SetKey(16, true), cpu.ErrInvalidKey))
	assert.NoError(t, m.SetKey(2, true))
	assert.True(t, m.Keys()[2])
}

func TestFramebufferAndCRC(t *testing.T) {
	// LD I,50 (glyph 0); DRW V0,V0,5; spin
	m := newMachine(t, Config{CyclesPerFrame: 2}, 0xA050, 0xD005, 0x1204)
	blank := m.FrameCRC32()
	assert.NoError(t, m.StepFrame())
	assert.True(t, m.TakeDirty())
	assert.True(t, m.FrameCRC32() != blank)

	fb := m.Framebuffer(white, black)
	assert.Len(t, fb, ppu.Pixels*4)
	assert.Equal(t, byte(0xFF), fb[0])
	assert.Equal(t, byte(0x00), fb[4*4])

	frame := m.Display()
	assert.True(t, frame[0])
	assert.False(t, frame[4])

	img := m.Image(white, black, 2)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestSoundGatesBeeper(t *testing.T) {
	// LD V0,30; LD ST,V0; spin
	m := newMachine(t, Config{CyclesPerFrame: 10, Volume: 1}, 0x601E, 0xF018, 0x1204)
	assert.NoError(t, m.StepFrame())
	assert.True(t, m.SoundActive())
	assert.Equal(t, 800, m.APUBufferedStereo())

	out := m.APUPullStereo(1)
	assert.Equal(t, int16(32767), out[0])

	for i := 0; i < 3; i++ {
		assert.NoError(t, m.StepFrame())
	}
	assert.False(t, m.SoundActive())
	m.APUCapBufferedStereo(10)
	assert.Equal(t, 10, m.APUBufferedStereo())
}

func TestMuteAcrossGoroutines(t *testing.T) {
	m := newMachine(t, Config{}, 0x1200)
	assert.False(t, m.Muted())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = m.Muted()
			_ = m.APUPullStereo(16)
		}
	}()
	for i := 0; i < 100; i++ {
		m.SetMuted(i%2 == 0)
		assert.NoError(t, m.StepFrame())
	}
	wg.Wait()

	m.SetMuted(true)
	assert.True(t, m.Muted())
	assert.NoError(t, m.Reset())
	assert.True(t, m.Muted())
}

func TestLoadROMFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x12, 0x00}, 0o600))

	m := New(Config{}, log.NewTestLogger(t))
	assert.NoError(t, m.LoadROMFromFile(path))
	assert.Equal(t, "spin", m.ROM().Info.Name)
	assert.NoError(t, m.StepFrame())

	assert.Error(t, m.LoadROMFromFile(filepath.Join(t.TempDir(), "nope.ch8")))
}

func TestStep(t *testing.T) {
	m := newMachine(t, Config{Trace: true}, 0x6A42, 0x1202)
	assert.NoError(t, m.Step())
	assert.Equal(t, byte(0x42), m.Registers().V[0xA])
	assert.Equal(t, uint16(0x1202), m.Registers().Opcode)
}

func TestSeededRandomIsReproducible(t *testing.T) {
	run := func() byte {
		m := newMachine(t, Config{Seed: 42, CyclesPerFrame: 1}, 0xC0FF)
		assert.NoError(t, m.StepFrame())
		return m.Registers().V[0]
	}
	assert.Equal(t, run(), run())
}

func TestKeyForRune(t *testing.T) {
	tests := []struct {
		r   rune
		key int
		ok  bool
	}{
		{'1', 0x1, true},
		{'4', 0xC, true},
		{'x', 0x0, true},
		{'X', 0x0, true},
		{'v', 0xF, true},
		{'p', 0, false},
	}
	for _, tt := range tests {
		key, ok := KeyForRune(tt.r)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.key, key)
	}
}
