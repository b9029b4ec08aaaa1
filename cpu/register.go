package cpu

const (
	REGISTER_COUNT = 8    // General purpose registers.
	REG_SP         = 7    // Register used as the stack pointer.
	SP_INIT        = 0xf4 // Stack pointer after reset.
)

// Registers is the register bank.
type Registers [REGISTER_COUNT]byte

// Get returns the value of register index.
func (reg *Registers) Get(index int) (value byte, err error) {
	if index < 0 || index >= len(reg) {
		err = ErrRegister(index)
		return
	}

	value = reg[index]
	return
}

// Set stores value into register index, keeping only the low 8 bits.
func (reg *Registers) Set(index int, value int) (err error) {
	if index < 0 || index >= len(reg) {
		err = ErrRegister(index)
		return
	}

	reg[index] = byte(value & 0xff)
	return
}

// Reset zeroes the register bank and points SP at the top of the stack.
func (reg *Registers) Reset() {
	clear(reg[:])
	reg[REG_SP] = SP_INIT
}
