package io

import (
	"io"
	"strconv"
)

// Tape provides sequential output of printed values. Each value is written
// to Output as its decimal representation followed by a newline, in the
// order the values are printed.
type Tape struct {
	Output io.Writer

	Lines int // Lines written since the last rewind.
}

var _ Device = (*Tape)(nil)

// Rewind is not possible on a tape; only the line counter is cleared.
func (tc *Tape) Rewind() {
	tc.Lines = 0
}

// Print writes the decimal value and a newline.
func (tc *Tape) Print(value byte) (err error) {
	if tc.Output == nil {
		err = ErrNoOutput
		return
	}

	var buf [4]byte
	line := strconv.AppendUint(buf[:0], uint64(value), 10)
	line = append(line, '\n')

	_, err = tc.Output.Write(line)
	if err != nil {
		return
	}

	tc.Lines++
	return
}
