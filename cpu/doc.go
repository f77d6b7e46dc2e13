// Package cpu implements the single accumulator processor of tinyvm, along
// with the loader and assembler that build its programs.
//
// The processor has a Harvard layout: instructions live in a Program keyed by
// instruction address, starting at PROGRAM_BASE, while LOAD, ADD, STORE and
// SUB operate on a separate ten word data Memory. The register set is the
// program counter (Pc), the accumulator (Acc), and the fetch latches Mar, Mdr
// and Ir.
//
// Each Tick fetches the Code at Pc, decodes it into an Instruction, and
// executes it. IN and OUT transfer the accumulator through I/O channels.
package cpu
