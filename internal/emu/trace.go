package emu

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/log"
)

const unknownMnemonic = "???"

// Mnemonic returns the assembler name of an instruction word, or "???" when the word
// does not decode.
func Mnemonic(op uint16) string {
	for _, o := range chip8.Opcodes[int(op>>12)] {
		if o.Info.Mask&op == o.Info.Value && o.Instruction != nil {
			return o.Instruction.Name
		}
	}
	return unknownMnemonic
}

// FormatInstruction renders an instruction word with its operands, e.g. "ld V1, $22".
func FormatInstruction(op uint16) string {
	name := Mnemonic(op)
	if name == unknownMnemonic {
		return name
	}
	if args := operands(op); args != "" {
		return name + " " + args
	}
	return name
}

func operands(op uint16) string {
	x, y := (op>>8)&0xF, (op>>4)&0xF
	nn, nnn := op&0xFF, op&0xFFF
	switch op >> 12 {
	case 0x1, 0x2:
		return fmt.Sprintf("$%03X", nnn)
	case 0x3, 0x4, 0x6, 0x7:
		return fmt.Sprintf("V%X, $%02X", x, nn)
	case 0x5, 0x9:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0x8:
		switch op & 0xF {
		case 0x6, 0xE:
			return fmt.Sprintf("V%X", x)
		}
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA:
		return fmt.Sprintf("I, $%03X", nnn)
	case 0xB:
		return fmt.Sprintf("V0, $%03X", nnn)
	case 0xC:
		return fmt.Sprintf("V%X, $%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("V%X, V%X, %d", x, y, op&0xF)
	case 0xE:
		return fmt.Sprintf("V%X", x)
	case 0xF:
		switch nn {
		case 0x07:
			return fmt.Sprintf("V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("V%X, K", x)
		case 0x15:
			return fmt.Sprintf("DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("I, V%X", x)
		case 0x29:
			return fmt.Sprintf("F, V%X", x)
		case 0x33:
			return fmt.Sprintf("B, V%X", x)
		case 0x55:
			return fmt.Sprintf("[I], V%X", x)
		case 0x65:
			return fmt.Sprintf("V%X, [I]", x)
		}
	}
	return ""
}

func traceInstruction(logger *log.Logger, c *cpu.CPU) {
	op := c.Opcode()
	logger.Debug("exec",
		log.Hex("pc", c.PC),
		log.Hex("opcode", op),
		log.String("ins", FormatInstruction(op)),
		log.Hex("i", c.I),
		log.Uint8("sp", c.SP))
}
