package cpu

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

// Opcode is the first byte of an instruction.
//
//	bit  7 6 | 5   | 4      | 3 2 1 0
//	operands | alu | sets pc| identifier
type Opcode uint8

// Opcode bit fields.
const (
	OPCODE_OPERANDS_SHIFT = 6
	OPCODE_OPERANDS_MASK  = 0b11
	OPCODE_ALU_SHIFT      = 5
	OPCODE_SETS_PC_SHIFT  = 4
	OPCODE_ALU_OP_MASK    = 0b1111
)

// Assigned opcodes.
const (
	OP_HLT  = Opcode(0b00000001) // hlt
	OP_PUSH = Opcode(0b01000101) // push
	OP_POP  = Opcode(0b01000110) // pop
	OP_PRN  = Opcode(0b01000111) // prn
	OP_LDI  = Opcode(0b10000010) // ldi
	OP_ADD  = Opcode(0b10100000) // add
	OP_SUB  = Opcode(0b10100001) // sub
	OP_MUL  = Opcode(0b10100010) // mul
	OP_AND  = Opcode(0b10101000) // and
	OP_OR   = Opcode(0b10101010) // or
	OP_XOR  = Opcode(0b10101011) // xor
	OP_SHL  = Opcode(0b10101100) // shl
	OP_SHR  = Opcode(0b10101101) // shr
)

var _opcode_names = map[Opcode]string{
	OP_HLT:  "hlt",
	OP_PUSH: "push",
	OP_POP:  "pop",
	OP_PRN:  "prn",
	OP_LDI:  "ldi",
	OP_ADD:  "add",
	OP_SUB:  "sub",
	OP_MUL:  "mul",
	OP_AND:  "and",
	OP_OR:   "or",
	OP_XOR:  "xor",
	OP_SHL:  "shl",
	OP_SHR:  "shr",
}

// Decoded holds the structural facts carried by an opcode's bits.
type Decoded struct {
	Operands int  // Number of operand bytes following the opcode.
	IsAlu    bool // Executed by the ALU.
	SetsPc   bool // Handler sets PC itself.
}

// Operands returns the operand count from bits 7..6.
// A count of 3 is not assigned to any instruction.
func (op Opcode) Operands() int {
	return int((op >> OPCODE_OPERANDS_SHIFT) & OPCODE_OPERANDS_MASK)
}

// IsAlu returns true if bit 5 is set.
func (op Opcode) IsAlu() bool {
	return ((op >> OPCODE_ALU_SHIFT) & 1) == 1
}

// SetsPc returns true if bit 4 is set.
func (op Opcode) SetsPc() bool {
	return ((op >> OPCODE_SETS_PC_SHIFT) & 1) == 1
}

// Decode returns all of the bit-derived facts of the opcode.
func (op Opcode) Decode() Decoded {
	return Decoded{
		Operands: op.Operands(),
		IsAlu:    op.IsAlu(),
		SetsPc:   op.SetsPc(),
	}
}

// Length is the instruction size in bytes, opcode included.
func (op Opcode) Length() int {
	return 1 + op.Operands()
}

// AluOp returns the ALU operation selected by the low nibble.
// Only meaningful when IsAlu() is true.
func (op Opcode) AluOp() AluOp {
	return AluOp(op & OPCODE_ALU_OP_MASK)
}

// String returns the mnemonic, or the hex value of an unassigned opcode.
func (op Opcode) String() string {
	name, ok := _opcode_names[op]
	if !ok {
		return fmt.Sprintf("0x%02x", uint8(op))
	}
	return name
}

// Mnemonics returns all assigned opcodes, keyed by upper case mnemonic.
func Mnemonics() iter.Seq2[string, Opcode] {
	return func(yield func(string, Opcode) bool) {
		for op, name := range maps.All(_opcode_names) {
			if !yield(strings.ToUpper(name), op) {
				return
			}
		}
	}
}

// Instruction is an opcode with its operand bytes.
// Operands beyond the decoded count are zero.
type Instruction struct {
	Opcode Opcode
	A      byte
	B      byte
}

// String returns the assembly language representation of this instruction.
func (ins Instruction) String() (out string) {
	out = strings.ToUpper(ins.Opcode.String())
	switch ins.Opcode.Operands() {
	case 1:
		out += fmt.Sprintf(" 0x%02x", ins.A)
	case 2, 3:
		out += fmt.Sprintf(" 0x%02x, 0x%02x", ins.A, ins.B)
	}
	return
}
