package io

import (
	"strconv"
)

// Temporary captures printed values in memory.
// A Capacity of zero means unbounded.
type Temporary struct {
	Capacity int // Maximum number of captured values.

	Values []byte
}

var _ Device = (*Temporary)(nil)

// Rewind discards all captured values.
func (temp *Temporary) Rewind() {
	temp.Values = temp.Values[:0]
}

// Print appends a value.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Print(value byte) (err error) {
	if temp.Capacity > 0 && len(temp.Values) >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Values = append(temp.Values, value)
	return
}

// Lines returns the captured values as they would appear on a Tape.
func (temp *Temporary) Lines() (lines []string) {
	lines = make([]string, 0, len(temp.Values))
	for _, value := range temp.Values {
		lines = append(lines, strconv.Itoa(int(value)))
	}
	return
}
