package cpu

import (
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
)

// opcode is one 16-bit instruction word, read as four nibbles d1 d2 d3 d4.
type opcode uint16

func (o opcode) family() int { return int(o >> 12) }
func (o opcode) x() int      { return int(o>>8) & 0x0F }
func (o opcode) y() int      { return int(o>>4) & 0x0F }
func (o opcode) n() byte     { return byte(o) & 0x0F }
func (o opcode) nn() byte    { return byte(o) }
func (o opcode) nnn() uint16 { return uint16(o) & 0x0FFF }

// skip returns the PC increment for a conditional skip.
func skip(cond bool) uint16 {
	if cond {
		return 2
	}
	return 0
}

type handler func(c *CPU, op opcode) error

// families is the primary jump table keyed by the first nibble.
var families = [16]handler{
	0x0: (*CPU).execSys,
	0x1: (*CPU).execJump,
	0x2: (*CPU).execCall,
	0x3: (*CPU).execSkipEqImm,
	0x4: (*CPU).execSkipNeImm,
	0x5: (*CPU).execSkipEqReg,
	0x6: (*CPU).execLoadImm,
	0x7: (*CPU).execAddImm,
	0x8: (*CPU).execALU,
	0x9: (*CPU).execSkipNeReg,
	0xA: (*CPU).execLoadIndex,
	0xB: (*CPU).execJumpV0,
	0xC: (*CPU).execRandom,
	0xD: (*CPU).execDraw,
	0xE: (*CPU).execKeySkip,
	0xF: (*CPU).execMisc,
}

// aluOps is the secondary table for the 8xyN family keyed by N. Flag-producing
// operations return the value for VF, which is written after Vx.
var aluOps = [16]func(vx, vy byte) (res byte, flag byte, setsFlag bool){
	0x0: func(_, vy byte) (byte, byte, bool) { return vy, 0, false },
	0x1: func(vx, vy byte) (byte, byte, bool) { return vx | vy, 0, false },
	0x2: func(vx, vy byte) (byte, byte, bool) { return vx & vy, 0, false },
	0x3: func(vx, vy byte) (byte, byte, bool) { return vx ^ vy, 0, false },
	0x4: func(vx, vy byte) (byte, byte, bool) {
		sum := uint16(vx) + uint16(vy)
		return byte(sum), boolFlag(sum > 0xFF), true
	},
	0x5: func(vx, vy byte) (byte, byte, bool) { return vx - vy, boolFlag(vx > vy), true },
	0x6: func(vx, _ byte) (byte, byte, bool) { return vx >> 1, vx & 0x01, true },
	0x7: func(vx, vy byte) (byte, byte, bool) { return vy - vx, boolFlag(vy > vx), true },
	0xE: func(vx, _ byte) (byte, byte, bool) { return vx << 1, vx >> 7, true },
}

func boolFlag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) execute(op opcode) error {
	return families[op.family()](c, op)
}

func (c *CPU) execSys(op opcode) error {
	switch op {
	case 0x00E0: // CLS
		c.disp.Clear()
		return nil
	case 0x00EE: // RET
		addr, err := c.pop()
		if err != nil {
			return err
		}
		c.PC = addr
		return nil
	}
	// 0nnn machine-code calls are not supported.
	return ErrUnknownOpcode
}

func (c *CPU) execJump(op opcode) error { // 1nnn
	c.PC = op.nnn()
	return nil
}

func (c *CPU) execCall(op opcode) error { // 2nnn
	if err := c.push(c.PC); err != nil {
		return err
	}
	c.PC = op.nnn()
	return nil
}

func (c *CPU) execSkipEqImm(op opcode) error { // 3xnn
	c.PC += skip(c.V[op.x()] == op.nn())
	return nil
}

func (c *CPU) execSkipNeImm(op opcode) error { // 4xnn
	c.PC += skip(c.V[op.x()] != op.nn())
	return nil
}

func (c *CPU) execSkipEqReg(op opcode) error { // 5xy0
	if op.n() != 0 {
		return ErrUnknownOpcode
	}
	c.PC += skip(c.V[op.x()] == c.V[op.y()])
	return nil
}

func (c *CPU) execSkipNeReg(op opcode) error { // 9xy0
	if op.n() != 0 {
		return ErrUnknownOpcode
	}
	c.PC += skip(c.V[op.x()] != c.V[op.y()])
	return nil
}

func (c *CPU) execLoadImm(op opcode) error { // 6xnn
	c.V[op.x()] = op.nn()
	return nil
}

func (c *CPU) execAddImm(op opcode) error { // 7xnn, no carry flag
	c.V[op.x()] += op.nn()
	return nil
}

func (c *CPU) execALU(op opcode) error { // 8xyN
	fn := aluOps[op.n()]
	if fn == nil {
		return ErrUnknownOpcode
	}
	x := op.x()
	res, flag, setsFlag := fn(c.V[x], c.V[op.y()])
	c.V[x] = res
	if setsFlag {
		c.V[0xF] = flag
	}
	return nil
}

func (c *CPU) execLoadIndex(op opcode) error { // Annn
	c.I = op.nnn()
	return nil
}

func (c *CPU) execJumpV0(op opcode) error { // Bnnn
	c.PC = uint16(c.V[0]) + op.nnn()
	return nil
}

func (c *CPU) execRandom(op opcode) error { // Cxnn
	c.V[op.x()] = c.rand() & op.nn()
	return nil
}

func (c *CPU) execDraw(op opcode) error { // Dxyn
	vx, vy := c.V[op.x()], c.V[op.y()]
	var rows [15]byte
	n := int(op.n())
	for r := 0; r < n; r++ {
		rows[r] = c.bus.Read(c.I + uint16(r))
	}
	c.V[0xF] = 0
	if c.disp.DrawSprite(vx, vy, rows[:n]) {
		c.V[0xF] = 1
	}
	return nil
}

func (c *CPU) execKeySkip(op opcode) error {
	pressed := c.keys[c.V[op.x()]&0x0F]
	switch op.nn() {
	case 0x9E: // SKP Vx
		c.PC += skip(pressed)
	case 0xA1: // SKNP Vx
		c.PC += skip(!pressed)
	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (c *CPU) execMisc(op opcode) error {
	x := op.x()
	switch op.nn() {
	case 0x07: // LD Vx, DT
		c.V[x] = c.DT
	case 0x0A: // LD Vx, K
		for k, pressed := range c.keys {
			if pressed {
				c.V[x] = byte(k)
				return nil
			}
		}
		// nothing held: run this instruction again next cycle
		c.PC -= 2
	case 0x15: // LD DT, Vx
		c.DT = c.V[x]
	case 0x18: // LD ST, Vx
		c.ST = c.V[x]
	case 0x1E: // ADD I, Vx
		c.I += uint16(c.V[x])
	case 0x29: // LD F, Vx
		c.I = bus.GlyphAddr(c.V[x])
	case 0x33: // LD B, Vx
		v := c.V[x]
		c.bus.Write(c.I, v/100)
		c.bus.Write(c.I+1, v/10%10)
		c.bus.Write(c.I+2, v%10)
	case 0x55: // LD [I], Vx; I is left unchanged as on CHIP-48 and later
		for i := 0; i <= x; i++ {
			c.bus.Write(c.I+uint16(i), c.V[i])
		}
	case 0x65: // LD Vx, [I]
		for i := 0; i <= x; i++ {
			c.V[i] = c.bus.Read(c.I + uint16(i))
		}
	default:
		return ErrUnknownOpcode
	}
	return nil
}
