package cpu

import (
	"errors"
)

// Step tells the execution loop what to do with PC after a handler.
type Step int

const (
	STEP_NEXT = Step(0) // Advance PC by the decoded instruction length.
	STEP_JUMP = Step(1) // PC was set by the handler.
	STEP_HALT = Step(2) // Stop the machine, PC unchanged.
)

// Handler executes one instruction.
// Handlers must validate their operands before changing any state.
type Handler func(cpu *Cpu, ins Instruction) (step Step, err error)

// Dispatch maps every opcode value to its handler; nil is unassigned.
type Dispatch [256]Handler

var _dispatch = func() (table Dispatch) {
	table[OP_HLT] = doHlt
	table[OP_LDI] = doLdi
	table[OP_PRN] = doPrn
	table[OP_PUSH] = doPush
	table[OP_POP] = doPop

	for _, op := range []Opcode{OP_ADD, OP_SUB, OP_MUL, OP_AND, OP_OR, OP_XOR, OP_SHL, OP_SHR} {
		table[op] = doAlu
	}

	return
}()

// Lookup returns the handler for op, or ErrIllegalInstruction.
func (table *Dispatch) Lookup(op Opcode) (handler Handler, err error) {
	handler = table[op]
	if handler == nil {
		err = ErrIllegalInstruction
	}
	return
}

func doHlt(cpu *Cpu, ins Instruction) (step Step, err error) {
	step = STEP_HALT
	return
}

func doLdi(cpu *Cpu, ins Instruction) (step Step, err error) {
	err = cpu.Register.Set(int(ins.A), int(ins.B))
	if err != nil {
		err = errors.Join(ErrOperandA, err)
	}
	return
}

func doPrn(cpu *Cpu, ins Instruction) (step Step, err error) {
	value, err := cpu.Register.Get(int(ins.A))
	if err != nil {
		err = errors.Join(ErrOperandA, err)
		return
	}

	err = cpu.Output.Print(value)
	return
}

func doPush(cpu *Cpu, ins Instruction) (step Step, err error) {
	value, err := cpu.Register.Get(int(ins.A))
	if err != nil {
		err = errors.Join(ErrOperandA, err)
		return
	}

	err = cpu.Push(value)
	return
}

func doPop(cpu *Cpu, ins Instruction) (step Step, err error) {
	err = cpu.Pop(int(ins.A))
	if err != nil {
		err = errors.Join(ErrOperandA, err)
	}
	return
}

// doAlu runs every ALU opcode; the operation comes from the opcode bits.
func doAlu(cpu *Cpu, ins Instruction) (step Step, err error) {
	a, err := cpu.Register.Get(int(ins.A))
	if err != nil {
		err = errors.Join(ErrOperandA, err)
		return
	}
	b, err := cpu.Register.Get(int(ins.B))
	if err != nil {
		err = errors.Join(ErrOperandB, err)
		return
	}

	output, err := Alu(ins.Opcode.AluOp(), a, b)
	if err != nil {
		return
	}

	cpu.Register[ins.A] = output
	return
}
