// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator ties an LS-8 CPU to a program listing and its output
// devices, adding a tick budget and source line reporting for faults.
package emulator

import (
	"context"
	"fmt"
	stdio "io"
	"iter"
	"maps"
	"os"

	"go.uber.org/zap"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
	"github.com/ezrec/ls8/program"
)

const (
	DEFAULT_MAX_TICKS = 1 << 20 // Tick budget used by the front ends.
)

var _emulator_defines = map[string]string{
	"DEFAULT_MAX_TICKS": fmt.Sprintf("%d", DEFAULT_MAX_TICKS),
}

// Emulator state. CPU + program listing + output devices.
type Emulator struct {
	Verbose  bool             // If set, enables verbose logging.
	Logger   *zap.Logger      // Destination of log records.
	*cpu.Cpu                  // Reference to the CPU simulation.
	Program  *program.Program // Reference to the currently loaded listing.

	Tape      io.Tape      // Decimal line output.
	Temporary io.Temporary // In-memory capture of printed values.

	MaxTicks int // Tick budget per run; zero is unlimited.

	output io.Device
}

// EmulatorOpt configures a new Emulator.
type EmulatorOpt func(*Emulator) *Emulator

// LoggerOpt sets the logger.
func LoggerOpt(l *zap.Logger) EmulatorOpt {
	return func(emu *Emulator) *Emulator {
		emu.Logger = l
		return emu
	}
}

// TapeOpt prints to w.
func TapeOpt(w stdio.Writer) EmulatorOpt {
	return func(emu *Emulator) *Emulator {
		emu.Tape.Output = w
		emu.output = &emu.Tape
		return emu
	}
}

// TemporaryOpt captures printed values in memory, up to capacity values.
func TemporaryOpt(capacity int) EmulatorOpt {
	return func(emu *Emulator) *Emulator {
		emu.Temporary.Capacity = capacity
		emu.output = &emu.Temporary
		return emu
	}
}

// MaxTicksOpt sets the tick budget.
func MaxTicksOpt(ticks int) EmulatorOpt {
	return func(emu *Emulator) *Emulator {
		emu.MaxTicks = ticks
		return emu
	}
}

// NewEmulator creates a new emulator, printing to standard output by default.
func NewEmulator(opts ...EmulatorOpt) (emu *Emulator) {
	emu = &Emulator{
		Logger:  zap.NewNop(),
		Program: &program.Program{},
	}
	emu.Tape.Output = os.Stdout
	emu.output = &emu.Tape

	for _, opt := range opts {
		emu = opt(emu)
	}

	emu.Cpu = cpu.NewCpu(cpu.LoggerOpt(emu.Logger), cpu.OutputOpt(emu.output))
	emu.Logger = emu.Logger.Named("emulator")

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return maps.All(internal.Symbols(emu.Cpu.Defines(), maps.All(_emulator_defines)))
}

// Load replaces the program and resets the emulator.
func (emu *Emulator) Load(prog *program.Program) (err error) {
	emu.Program = prog
	err = emu.Reset()
	return
}

// Reset the CPU and copy the program image into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Load(emu.Program.Bytes())
	if err != nil {
		return
	}

	if emu.Verbose {
		emu.Logger.Debug("reset", zap.Int("lines", len(emu.Program.Lines)))
	}

	return
}

// LineNo returns the source line of the byte at PC, or 0 if unknown.
func (emu *Emulator) LineNo() int {
	line, _ := emu.Program.Debug(emu.Cpu.Pc)
	return line.LineNo
}

// Output returns the values captured by the Temporary device.
func (emu *Emulator) Output() []string {
	return emu.Temporary.Lines()
}

// Tick performs a single tick of the emulator.
// done is set once the CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	address := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Address: address, Err: err}
		}
	}()

	if emu.Cpu.State == cpu.STATE_HALTED {
		done = true
		return
	}

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.State == cpu.STATE_HALTED
	return
}

// Run ticks until the CPU halts, faults, exhausts the tick budget or
// ctx is cancelled.
func (emu *Emulator) Run(ctx context.Context) (state cpu.State, err error) {
	for {
		err = ctx.Err()
		if err != nil {
			break
		}

		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			break
		}
	}

	state = emu.Cpu.State
	if emu.Verbose {
		emu.Logger.Debug("run",
			zap.Stringer("state", state),
			zap.Int("ticks", emu.Cpu.Ticks),
			zap.Error(err))
	}

	return
}
