package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrOutOfBounds          = errors.New(f("out of bounds"))
	ErrInvalidValue         = errors.New(f("invalid value"))
	ErrUnsupportedOperation = errors.New(f("unsupported alu operation"))
	ErrIllegalInstruction   = errors.New(f("illegal instruction"))
	ErrHalted               = errors.New(f("halted"))
	ErrInvalidStep          = errors.New(f("invalid handler step"))

	// Operand errors
	ErrOperandA = errors.New(f("operand a"))
	ErrOperandB = errors.New(f("operand b"))
	ErrFetch    = errors.New(f("fetch"))
)

// ErrOpcode identifies the instruction that caused a fault.
type ErrOpcode Opcode

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0b%08b %v", uint8(eo), Opcode(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress is an out of range memory address.
type ErrAddress int

func (ea ErrAddress) Error() string {
	return f("address %d %v", int(ea), ErrOutOfBounds)
}

func (ea ErrAddress) Unwrap() error {
	return ErrOutOfBounds
}

// ErrRegister is an out of range register index.
type ErrRegister int

func (er ErrRegister) Error() string {
	return f("register %d %v", int(er), ErrOutOfBounds)
}

func (er ErrRegister) Unwrap() error {
	return ErrOutOfBounds
}
