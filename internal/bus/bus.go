// Package bus models the CHIP-8 4 KiB address space: the interpreter area with the
// built-in font and the program area starting at 0x200.
package bus

import (
	"github.com/pkg/errors"
)

const (
	// Size is the size of the addressable memory in bytes.
	Size = 0x1000
	// ProgramStart is the address programs are loaded to and execution begins at.
	ProgramStart = 0x200
	// MaxProgramSize is the largest program that fits behind ProgramStart.
	MaxProgramSize = Size - ProgramStart

	// FontStart is the address of the first glyph of the built-in font.
	FontStart = 0x050
	// GlyphHeight is the number of bytes (rows) per font glyph.
	GlyphHeight = 5
)

// ErrROMTooLarge is returned by Load when a program does not fit into memory.
var ErrROMTooLarge = errors.New("program too large for memory")

// Font holds the 16 hex digit glyphs, 4 pixels wide and 5 rows tall, left aligned in each byte.
//
//	"0"   1111 0000  0xF0
//	      1001 0000  0x90
//	      1001 0000  0x90
//	      1001 0000  0x90
//	      1111 0000  0xF0
var Font = [16 * GlyphHeight]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Bus is the flat CHIP-8 memory. Addresses wrap at Size.
type Bus struct {
	ram [Size]byte
}

// New returns zeroed memory with the font installed at FontStart.
func New() *Bus {
	b := &Bus{}
	copy(b.ram[FontStart:], Font[:])
	return b
}

// Load copies a program verbatim to ProgramStart. Oversized programs are rejected
// before any byte is written.
func (b *Bus) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return errors.Wrapf(ErrROMTooLarge, "%d bytes, max %d", len(program), MaxProgramSize)
	}
	copy(b.ram[ProgramStart:], program)
	return nil
}

// Read returns the byte at addr, wrapped into the 4 KiB space.
func (b *Bus) Read(addr uint16) byte {
	return b.ram[addr%Size]
}

// Write stores value at addr, wrapped into the 4 KiB space.
func (b *Bus) Write(addr uint16, value byte) {
	b.ram[addr%Size] = value
}

// Read16 returns the big-endian word at addr.
func (b *Bus) Read16(addr uint16) uint16 {
	return uint16(b.Read(addr))<<8 | uint16(b.Read(addr+1))
}

// GlyphAddr returns the address of the font glyph for the low nibble of digit.
func GlyphAddr(digit byte) uint16 {
	return FontStart + uint16(digit&0x0F)*GlyphHeight
}
