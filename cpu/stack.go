package cpu

// The stack lives in Memory and grows down from SP_INIT. SP is an 8-bit
// register, so it wraps: a push at SP 0x00 stores to 0xff, and a pop at
// SP 0xff leaves SP at 0x00. Nothing keeps the stack out of program space.

// Push decrements SP, then stores value at the new stack top.
func (cpu *Cpu) Push(value byte) (err error) {
	sp := cpu.Register[REG_SP] - 1

	err = cpu.Memory.Write(int(sp), int(value))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	return
}

// Pop loads the stack top into register index, then increments SP.
// Popping into SP itself leaves SP one past the popped value.
func (cpu *Cpu) Pop(index int) (err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	value, err := cpu.Memory.Read(int(cpu.Register[REG_SP]))
	if err != nil {
		return
	}

	cpu.Register[index] = value
	cpu.Register[REG_SP]++
	return
}

// Peek returns the value at the stack top without moving SP.
func (cpu *Cpu) Peek() (value byte) {
	return cpu.Memory[cpu.Register[REG_SP]]
}
