package cpu

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

func (c *CPU) push(addr uint16) error {
	if int(c.SP) >= StackDepth {
		return ErrStackOverflow
	}
	c.Stack[c.SP] = addr
	c.SP++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.SP == 0 {
		return 0, ErrStackUnderflow
	}
	c.SP--
	return c.Stack[c.SP], nil
}
