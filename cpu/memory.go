package cpu

const (
	MEMORY_SIZE = 256 // Bytes of memory.
)

// Memory is the flat byte array shared by code, data and the stack.
type Memory [MEMORY_SIZE]byte

// Read returns the byte at address.
func (mem *Memory) Read(address int) (value byte, err error) {
	if address < 0 || address >= len(mem) {
		err = ErrAddress(address)
		return
	}

	value = mem[address]
	return
}

// Write stores value at address. Values outside 0..255 are rejected
// rather than truncated.
func (mem *Memory) Write(address int, value int) (err error) {
	if address < 0 || address >= len(mem) {
		err = ErrAddress(address)
		return
	}
	if value < 0 || value > 0xff {
		err = ErrInvalidValue
		return
	}

	mem[address] = byte(value)
	return
}

// Reset zeroes all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
