// Package emu wires the CHIP-8 CPU, program loader and beeper into a machine that
// frontends drive one 60 Hz frame at a time.
package emu

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// ErrNoROM is returned when stepping a machine that has no program loaded.
var ErrNoROM = errors.New("no ROM loaded")

// Registers is a snapshot of the CPU state for debug views.
type Registers struct {
	V      [16]byte
	I      uint16
	PC     uint16
	SP     byte
	DT     byte
	ST     byte
	Opcode uint16
}

// Machine owns one CPU and its beeper. All methods are safe for concurrent use;
// frontends that deliver input from another goroutine rely on that.
type Machine struct {
	mu     sync.Mutex
	cfg    Config
	logger *log.Logger

	cpu    *cpu.CPU
	beeper *apu.Beeper
	rom    *cart.ROM
	keys   Keys
	fb     []byte // RGBA 64x32x4
	frames uint64
	muted  bool
}

// New returns a machine with no program loaded. Zero Config fields take their defaults.
func New(cfg Config, logger *log.Logger) *Machine {
	cfg.Defaults()
	b := apu.New(cfg.SampleRate)
	b.SetTone(cfg.Tone)
	b.SetVolume(cfg.Volume)
	return &Machine{
		cfg:    cfg,
		logger: logger,
		cpu:    cpu.New(),
		beeper: b,
		fb:     make([]byte, ppu.Pixels*4),
	}
}

// Config returns the effective configuration.
func (m *Machine) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// SetCyclesPerFrame changes the emulation speed. Values below 1 are clamped to 1.
func (m *Machine) SetCyclesPerFrame(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	m.cfg.CyclesPerFrame = n
	m.mu.Unlock()
}

// LoadROM replaces the running program with rom and restarts from 0x200.
func (m *Machine) LoadROM(rom *cart.ROM) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.newCPU()
	if err := c.Load(rom.Data); err != nil {
		return errors.Wrapf(err, "loading %s", rom.Info.Name)
	}
	m.cpu = c
	m.rom = rom
	m.frames = 0
	m.beeper.Reset()
	m.logger.Info("ROM loaded",
		log.String("name", rom.Info.Name),
		log.Int("size", rom.Info.Size),
		log.String("crc32", fmt.Sprintf("%08X", rom.Info.CRC32)))
	return nil
}

// LoadROMFromFile reads and loads a program from disk.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := cart.Load(path)
	if err != nil {
		return err
	}
	return m.LoadROM(rom)
}

// ROM returns the loaded program, or nil.
func (m *Machine) ROM() *cart.ROM {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rom
}

// Reset reloads the current program into a fresh CPU, clearing a latched trap.
func (m *Machine) Reset() error {
	m.mu.Lock()
	rom := m.rom
	m.mu.Unlock()
	if rom == nil {
		return ErrNoROM
	}
	return m.LoadROM(rom)
}

func (m *Machine) newCPU() *cpu.CPU {
	opts := []cpu.Option{cpu.WithClipping(m.cfg.Clip)}
	if m.cfg.Seed != 0 {
		opts = append(opts, cpu.WithSeed(m.cfg.Seed))
	}
	c := cpu.New(opts...)
	for i, pressed := range m.keys {
		_ = c.SetKey(i, pressed)
	}
	return c
}

// StepFrame runs one frame worth of cycles, then gates the beeper on the sound timer
// and renders the frame's audio. It stops at the first trap and returns it; a halted
// machine keeps returning the same error until Reset.
func (m *Machine) StepFrame() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rom == nil {
		return ErrNoROM
	}
	if err := m.cpu.Err(); err != nil {
		return err
	}
	for i := 0; i < m.cfg.CyclesPerFrame; i++ {
		if err := m.cycle(); err != nil {
			return err
		}
	}
	m.beeper.SetGate(m.cpu.ST > 0)
	m.beeper.Generate(m.beeper.FramesPerTick(FrameRate))
	m.frames++
	return nil
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rom == nil {
		return ErrNoROM
	}
	if err := m.cpu.Err(); err != nil {
		return err
	}
	err := m.cycle()
	m.beeper.SetGate(m.cpu.ST > 0)
	return err
}

func (m *Machine) cycle() error {
	if m.cfg.Trace {
		traceInstruction(m.logger, m.cpu)
	}
	err := m.cpu.Cycle()
	if err == nil {
		return nil
	}
	m.beeper.SetGate(false)
	var trap *cpu.TrapError
	if errors.As(err, &trap) {
		m.logger.Error("CPU halted",
			log.Err(trap.Err),
			log.Hex("pc", trap.PC),
			log.Hex("opcode", trap.Opcode),
			log.String("ins", FormatInstruction(trap.Opcode)))
	}
	return err
}

// SetKey updates one keypad key.
func (m *Machine) SetKey(index int, pressed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cpu.SetKey(index, pressed); err != nil {
		return err
	}
	m.keys[index] = pressed
	return nil
}

// SetKeys replaces the whole keypad state.
func (m *Machine) SetKeys(keys Keys) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = keys
	for i, pressed := range keys {
		_ = m.cpu.SetKey(i, pressed)
	}
}

// Keys returns the current keypad state.
func (m *Machine) Keys() Keys {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys
}

// Display returns a copy of the framebuffer.
func (m *Machine) Display() ppu.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Display().Frame()
}

// Framebuffer renders the display as 64x32 RGBA bytes. The returned slice is reused
// by the next call.
func (m *Machine) Framebuffer(fg, bg color.RGBA) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.Display().WriteRGBA(m.fb, fg, bg)
	return m.fb
}

// Image renders the display scaled by an integer factor.
func (m *Machine) Image(fg, bg color.RGBA, scale int) *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Display().Image(fg, bg, scale)
}

// FrameCRC32 returns the checksum of the current framebuffer.
func (m *Machine) FrameCRC32() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Display().CRC32()
}

// TakeDirty reports whether the display changed since the last call.
func (m *Machine) TakeDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Display().TakeDirty()
}

// Registers returns a snapshot of the CPU registers.
func (m *Machine) Registers() Registers {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cpu
	return Registers{
		V:      c.V,
		I:      c.I,
		PC:     c.PC,
		SP:     c.SP,
		DT:     c.DT,
		ST:     c.ST,
		Opcode: c.Opcode(),
	}
}

// SoundActive reports whether the beeper is sounding, i.e. the sound timer was running
// at the end of the last step and the CPU is not halted.
func (m *Machine) SoundActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beeper.Gate()
}

// Halted reports whether the CPU stopped on a trap.
func (m *Machine) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Halted()
}

// Err returns the trap that halted the CPU.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Err()
}

// Frames returns the number of frames run since the last load or reset.
func (m *Machine) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// SetMuted silences host playback. The beeper keeps running so unmuting stays in sync.
func (m *Machine) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

// Muted reports whether host playback is silenced.
func (m *Machine) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// APUPullStereo drains up to max interleaved stereo frames of beeper output.
func (m *Machine) APUPullStereo(max int) []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beeper.PullStereo(max)
}

// APUBufferedStereo returns the number of queued stereo frames.
func (m *Machine) APUBufferedStereo() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beeper.StereoAvailable()
}

// APUCapBufferedStereo drops old audio so at most target frames stay queued.
func (m *Machine) APUCapBufferedStereo(target int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beeper.CapBuffered(target)
}
