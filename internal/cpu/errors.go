package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownOpcode is reported for any instruction word outside the CHIP-8 set.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow is reported when a call is made with all 16 stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is reported when a return is executed with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrPCOutOfRange is reported when the program counter leaves the address space.
	ErrPCOutOfRange = errors.New("program counter out of range")
	// ErrInvalidKey is returned by SetKey for indices outside 0..15.
	ErrInvalidKey = errors.New("invalid key index")
)

// TrapError is the fatal condition that stops the interpreter. It records the address
// and word of the instruction that failed; the cause is one of the sentinel errors.
type TrapError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trap at %03X (opcode %04X): %v", e.PC, e.Opcode, e.Err)
}

func (e *TrapError) Unwrap() error { return e.Err }
