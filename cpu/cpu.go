// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ezrec/ls8/io"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"SP_INIT":        fmt.Sprintf("0x%x", SP_INIT),
}

// State is the execution state of the CPU.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_READY   = State(0) // ready
	STATE_RUNNING = State(1) // running
	STATE_HALTED  = State(2) // halted
	STATE_FAULTED = State(3) // faulted
)

// Done returns true for the terminal states.
func (st State) Done() bool {
	return st == STATE_HALTED || st == STATE_FAULTED
}

// Cpu is the simulation context for the LS-8.
type Cpu struct {
	Verbose bool        // Set to enable per-instruction debug logging.
	Logger  *zap.Logger // Destination of log records.

	Memory   Memory    // Code, data and stack.
	Register Registers // Register bank, r7 is SP.
	Pc       int       // Address of the next instruction.

	State State // Current execution state.
	Fault error // Reason for STATE_FAULTED.
	Ticks int   // Cycles started since reset.

	Output io.Device // Destination of PRN values.

	dispatch Dispatch
}

// CpuOpt configures a new Cpu.
type CpuOpt func(*Cpu) *Cpu

// LoggerOpt sets the logger.
func LoggerOpt(l *zap.Logger) CpuOpt {
	return func(cpu *Cpu) *Cpu {
		cpu.Logger = l
		return cpu
	}
}

// OutputOpt sets the PRN output device.
func OutputOpt(device io.Device) CpuOpt {
	return func(cpu *Cpu) *Cpu {
		cpu.Output = device
		return cpu
	}
}

// NewCpu creates a reset CPU printing to standard output.
func NewCpu(opts ...CpuOpt) (cpu *Cpu) {
	cpu = &Cpu{
		Logger:   zap.NewNop(),
		Output:   &io.Tape{Output: os.Stdout},
		dispatch: _dispatch,
	}

	for _, opt := range opts {
		cpu = opt(cpu)
	}

	cpu.Logger = cpu.Logger.Named("cpu")
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Handle installs a handler for op on this CPU only.
// A nil handler makes op illegal.
func (cpu *Cpu) Handle(op Opcode, handler Handler) {
	cpu.dispatch[op] = handler
}

// Handler returns the handler installed for op.
func (cpu *Cpu) Handler(op Opcode) (handler Handler, err error) {
	return cpu.dispatch.Lookup(op)
}

// String returns a one line trace of the CPU state:
// PC, the three bytes at PC, r0 through r7, then the stack top.
func (cpu *Cpu) String() (text string) {
	peek := func(address int) byte {
		value, _ := cpu.Memory.Read(address)
		return value
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%02X | %02X %02X %02X |", cpu.Pc, peek(cpu.Pc), peek(cpu.Pc+1), peek(cpu.Pc+2))
	for _, value := range cpu.Register {
		fmt.Fprintf(&sb, " %02X", value)
	}
	fmt.Fprintf(&sb, " | %02X", cpu.Peek())

	text = sb.String()
	return
}

// Reset the CPU state.
// - Clears memory.
// - Clears the registers, and sets SP to SP_INIT.
// - Sets PC to 0.
// - Zeros the tick counter, and clears any fault.
// - Rewinds the output device.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		cpu.Logger.Debug("reset")
	}

	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Pc = 0
	cpu.State = STATE_READY
	cpu.Fault = nil
	cpu.Ticks = 0

	if cpu.Output != nil {
		cpu.Output.Rewind()
	}
}

// Load resets the CPU and copies a program image to address 0.
// An image larger than memory is rejected before anything changes.
func (cpu *Cpu) Load(image []byte) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrAddress(len(image) - 1)
		return
	}

	cpu.Reset()
	copy(cpu.Memory[:], image)

	if cpu.Verbose {
		cpu.Logger.Debug("load", zap.Int("bytes", len(image)))
	}

	return
}

// Fetch reads the instruction at PC. Only the operands the opcode
// declares are read; at most two.
func (cpu *Cpu) Fetch() (ins Instruction, err error) {
	value, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		err = errors.Join(ErrFetch, err)
		return
	}

	ins.Opcode = Opcode(value)
	err = cpu.fetchOperands(&ins)
	return
}

func (cpu *Cpu) fetchOperands(ins *Instruction) (err error) {
	need := ins.Opcode.Operands()
	if need > 0 {
		ins.A, err = cpu.Memory.Read(cpu.Pc + 1)
		if err != nil {
			err = errors.Join(ErrFetch, ErrOperandA, err)
			return
		}
	}
	if need > 1 {
		ins.B, err = cpu.Memory.Read(cpu.Pc + 2)
		if err != nil {
			err = errors.Join(ErrFetch, ErrOperandB, err)
			return
		}
	}
	return
}

// Tick executes a single fetch-decode-execute cycle.
// Any error faults the CPU; later ticks return the same fault.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State {
	case STATE_HALTED:
		err = ErrHalted
		return
	case STATE_FAULTED:
		err = cpu.Fault
		return
	}

	cpu.State = STATE_RUNNING
	cpu.Ticks++

	defer func() {
		if err != nil {
			cpu.State = STATE_FAULTED
			cpu.Fault = err
			cpu.Logger.Debug("fault",
				zap.Int("pc", cpu.Pc),
				zap.Error(err))
		}
	}()

	value, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		err = errors.Join(ErrFetch, err)
		return
	}

	// Unassigned opcodes fault before their operands are read.
	ins := Instruction{Opcode: Opcode(value)}
	_, err = cpu.Handler(ins.Opcode)
	if err != nil {
		err = errors.Join(ErrOpcode(ins.Opcode), err)
		return
	}

	err = cpu.fetchOperands(&ins)
	if err != nil {
		err = errors.Join(ErrOpcode(ins.Opcode), err)
		return
	}

	err = cpu.Execute(ins)
	return
}

// Execute executes a single decoded instruction, and updates PC.
// Execute does not change the CPU state on error; Tick does.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(ins.Opcode), err)
		}
	}()

	if cpu.Verbose {
		cpu.Logger.Debug("execute",
			zap.String("trace", cpu.String()),
			zap.Stringer("ins", ins))
	}

	handler, err := cpu.Handler(ins.Opcode)
	if err != nil {
		return
	}

	step, err := handler(cpu, ins)
	if err != nil {
		return
	}

	switch step {
	case STEP_NEXT:
		cpu.Pc += ins.Opcode.Length()
	case STEP_JUMP:
		// Handler has set PC.
	case STEP_HALT:
		cpu.State = STATE_HALTED
		if cpu.Verbose {
			cpu.Logger.Debug("halt", zap.Int("pc", cpu.Pc), zap.Int("ticks", cpu.Ticks))
		}
	default:
		err = ErrInvalidStep
	}

	return
}

// Run ticks until the CPU halts or faults, and returns the final state.
// The error is the fault, if any.
func (cpu *Cpu) Run() (state State, err error) {
	for !cpu.State.Done() {
		err = cpu.Tick()
		if err != nil {
			break
		}
	}

	state = cpu.State
	if state == STATE_FAULTED {
		err = cpu.Fault
	}

	return
}
