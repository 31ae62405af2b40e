// Package cpu implements the CHIP-8 interpreter: register file, call stack, timers,
// keypad and the fetch-decode-execute loop over the memory bus and framebuffer.
package cpu

import (
	"math/rand"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/pkg/errors"
)

// KeyCount is the size of the hex keypad.
const KeyCount = 16

// CPU is a CHIP-8 virtual machine. It is not safe for concurrent use; the driver that
// calls Cycle owns it and may only read the display or change keys between cycles.
type CPU struct {
	// V0..VF. VF doubles as the carry, borrow and collision flag.
	V [16]byte

	I  uint16
	PC uint16

	Stack [StackDepth]uint16
	SP    byte // next free stack slot

	DT byte // delay timer
	ST byte // sound timer

	keys [KeyCount]bool

	bus  *bus.Bus
	disp *ppu.Display
	rand func() byte

	// err latches the first trap; the CPU does nothing after it.
	err error
}

// Option configures a CPU at construction.
type Option func(*CPU)

// WithRand sets the byte source used by Cxnn.
func WithRand(f func() byte) Option {
	return func(c *CPU) { c.rand = f }
}

// WithSeed makes Cxnn deterministic.
func WithSeed(seed int64) Option {
	return func(c *CPU) {
		r := rand.New(rand.NewSource(seed))
		c.rand = func() byte { return byte(r.Intn(256)) }
	}
}

// WithClipping makes sprites clip at the screen edges instead of wrapping.
func WithClipping(on bool) Option {
	return func(c *CPU) { c.disp.SetClipping(on) }
}

// New creates a CPU with zeroed registers, the font installed and PC at 0x200.
func New(opts ...Option) *CPU {
	c := &CPU{
		PC:   bus.ProgramStart,
		bus:  bus.New(),
		disp: ppu.New(),
	}
	WithSeed(time.Now().UnixNano())(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load copies a program to 0x200. A program that does not fit is rejected without
// touching memory.
func (c *CPU) Load(program []byte) error {
	return c.bus.Load(program)
}

// Bus exposes memory for tests and tools.
func (c *CPU) Bus() *bus.Bus { return c.bus }

// Display returns the framebuffer. Callers must treat it as read-only.
func (c *CPU) Display() *ppu.Display { return c.disp }

// SetKey records the state of keypad key index (0..15).
func (c *CPU) SetKey(index int, pressed bool) error {
	if index < 0 || index >= KeyCount {
		return errors.Wrapf(ErrInvalidKey, "%d", index)
	}
	c.keys[index] = pressed
	return nil
}


// Err returns the trap that halted the CPU, or nil while it is running.
func (c *CPU) Err() error { return c.err }

// Halted reports whether a trap has stopped execution.
func (c *CPU) Halted() bool { return c.err != nil }

// Opcode returns the instruction word at PC without executing it.
func (c *CPU) Opcode() uint16 { return c.bus.Read16(c.PC) }

// Cycle fetches, decodes and executes one instruction, then ticks both timers.
// PC is advanced past the instruction before it executes, so jumps and skips
// overwrite the advanced value. Any error is a *TrapError; it is latched and
// returned again by every later call.
func (c *CPU) Cycle() error {
	if c.err != nil {
		return c.err
	}

	pc := c.PC
	if pc > bus.Size-2 {
		return c.trap(pc, 0, ErrPCOutOfRange)
	}
	op := c.bus.Read16(pc)
	c.PC += 2

	if err := c.execute(opcode(op)); err != nil {
		return c.trap(pc, op, err)
	}

	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
	}
	return nil
}

func (c *CPU) trap(pc, op uint16, err error) error {
	// leave PC on the failing instruction
	c.PC = pc
	c.err = &TrapError{PC: pc, Opcode: op, Err: err}
	return c.err
}
