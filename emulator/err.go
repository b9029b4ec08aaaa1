package emulator

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit exceeded"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo  int // Source line, or 0 if the address has no source.
	Address int // PC at the start of the failing tick.
	Err     error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (address 0x%02x) %v", err.LineNo, err.Address, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
