package cpu

// AluOp is an ALU operation, taken from the low nibble of an ALU opcode.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(0x0) // add
	ALU_OP_SUB = AluOp(0x1) // sub
	ALU_OP_MUL = AluOp(0x2) // mul
	ALU_OP_AND = AluOp(0x8) // and
	ALU_OP_OR  = AluOp(0xa) // or
	ALU_OP_XOR = AluOp(0xb) // xor
	ALU_OP_SHL = AluOp(0xc) // shl
	ALU_OP_SHR = AluOp(0xd) // shr
)

// Alu performs the requested ALU action, and returns the output value
// truncated to 8 bits.
func Alu(op AluOp, a byte, b byte) (output byte, err error) {
	// Computed at full width, then truncated modulo 256.
	x := uint(a)
	y := uint(b)

	var wide uint
	switch op {
	case ALU_OP_ADD:
		wide = x + y
	case ALU_OP_SUB:
		wide = x + ((^y) + 1)
	case ALU_OP_MUL:
		wide = x * y
	case ALU_OP_AND:
		wide = x & y
	case ALU_OP_OR:
		wide = x | y
	case ALU_OP_XOR:
		wide = x ^ y
	case ALU_OP_SHL:
		wide = x << (y & 7) // clamp to 7 bits of shift
	case ALU_OP_SHR:
		wide = x >> (y & 7) // clamp to 7 bits of shift
	default:
		err = ErrUnsupportedOperation
		return
	}

	output = byte(wide & 0xff)
	return
}
