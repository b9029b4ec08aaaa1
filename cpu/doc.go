// Package cpu implements the LS-8 microprocessor.
//
// The LS-8 has eight 8-bit registers (r0-r7, with r7 serving as the stack
// pointer), 256 bytes of memory shared by code, data and the stack, and a
// program counter (PC). Each instruction is an opcode byte followed by zero,
// one or two operand bytes.
//
// The opcode describes itself: its two most significant bits give the
// operand count, bit 5 marks an ALU operation and bit 4 marks an instruction
// that sets PC directly. The execution loop relies only on these bits to
// advance PC, so the dispatch table can grow without touching the loop.
package cpu
