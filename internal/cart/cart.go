// Package cart loads CHIP-8 program images from disk.
package cart

import (
	"os"
	"path/filepath"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
	"github.com/pkg/errors"
)

// ErrEmptyROM is returned for a zero-length program image.
var ErrEmptyROM = errors.New("empty ROM")

// ROM is a program image ready to be copied to 0x200.
type ROM struct {
	Data []byte
	Info Info
}

// Load reads a ROM file and validates that it fits the program area.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading ROM file")
	}
	name := filepath.Base(path)
	rom, err := New(name, data)
	if err != nil {
		return nil, errors.Wrapf(err, "ROM %s", name)
	}
	return rom, nil
}

// New wraps an in-memory program image. The data is copied.
func New(name string, data []byte) (*ROM, error) {
	if len(data) == 0 {
		return nil, ErrEmptyROM
	}
	if len(data) > bus.MaxProgramSize {
		return nil, errors.Wrapf(bus.ErrROMTooLarge, "%d bytes, max %d", len(data), bus.MaxProgramSize)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &ROM{Data: buf, Info: ParseInfo(name, buf)}, nil
}
