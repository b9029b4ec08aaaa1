// Package io provides the output devices of the LS-8 emulator.
// PRN instructions deliver register values to a Device, which either
// writes them as decimal text lines (Tape) or captures them in memory
// (Temporary).
package io

// Device defines the interface for all output devices attached to the CPU.
type Device interface {
	// Rewind resets the device to its initial state.
	Rewind()
	// Print emits a single register value.
	Print(value byte) error
}
