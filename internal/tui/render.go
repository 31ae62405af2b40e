package tui

import (
	"fmt"
	"strings"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
)

// renderFrame draws the display with half-block characters, two pixel rows per line.
func renderFrame(f ppu.Frame) string {
	var sb strings.Builder
	sb.Grow(ppu.Height / 2 * (ppu.Width*3 + 1))
	for y := 0; y < ppu.Height; y += 2 {
		for x := 0; x < ppu.Width; x++ {
			top := f[y*ppu.Width+x]
			bottom := f[(y+1)*ppu.Width+x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatRegisters(r emu.Registers) string {
	var sb strings.Builder
	for i, v := range r.V {
		fmt.Fprintf(&sb, "V%X=%02X", i, v)
		if i%4 == 3 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	fmt.Fprintf(&sb, "I=%03X PC=%03X SP=%X\n", r.I, r.PC, r.SP)
	fmt.Fprintf(&sb, "DT=%02X ST=%02X\n", r.DT, r.ST)
	fmt.Fprintf(&sb, "%04X %s\n", r.Opcode, emu.FormatInstruction(r.Opcode))
	return sb.String()
}

func formatKeys(k emu.Keys) string {
	grid := [4][4]int{{0x1, 0x2, 0x3, 0xC}, {0x4, 0x5, 0x6, 0xD}, {0x7, 0x8, 0x9, 0xE}, {0xA, 0x0, 0xB, 0xF}}
	var sb strings.Builder
	for _, row := range grid {
		for i, key := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			if k[key] {
				fmt.Fprintf(&sb, "[%X]", key)
			} else {
				fmt.Fprintf(&sb, " %X ", key)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
