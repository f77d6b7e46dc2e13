package cpu

import (
	"iter"
)

const (
	PROGRAM_BASE  = 10   // Instruction address of the first loaded instruction.
	PROGRAM_LIMIT = 1000 // Instruction addresses are below this limit.
)

// Line is one instruction of a program, with its source location.
type Line struct {
	LineNo    int      // Source line number.
	Ip        int      // Instruction address.
	Words     []string // Source words.
	Code      Code     // Raw code at Ip.
	LinkLabel string   // Label the assembler resolves into the operand.
}

// Program is the instruction store: codes at consecutive instruction
// addresses starting at Base.
type Program struct {
	Base  int
	Lines []Line
}

// NewProgram creates an empty program at PROGRAM_BASE.
func NewProgram() *Program {
	return &Program{Base: PROGRAM_BASE}
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	return len(prog.Lines)
}

// End returns the instruction address after the last instruction.
func (prog *Program) End() int {
	return prog.Base + len(prog.Lines)
}

// Contains returns true if an instruction was loaded at ip.
func (prog *Program) Contains(ip int) bool {
	return ip >= prog.Base && ip < prog.End()
}

// Append adds a line at the next instruction address.
func (prog *Program) Append(line Line) (err error) {
	ip := prog.End()
	if ip >= PROGRAM_LIMIT {
		err = ErrProgramFull
		return
	}

	line.Ip = ip
	prog.Lines = append(prog.Lines, line)

	return
}

// At returns the code at an instruction address.
func (prog *Program) At(ip int) (code Code, ok bool) {
	if !prog.Contains(ip) {
		return
	}

	return prog.Lines[ip-prog.Base].Code, true
}

// Debug returns the source line at an instruction address, or nil.
func (prog *Program) Debug(ip int) (line *Line) {
	if !prog.Contains(ip) {
		return
	}

	return &prog.Lines[ip-prog.Base]
}

// Codes iterates over the instruction addresses and their codes.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(ip int, code Code) bool) {
		for n, line := range prog.Lines {
			if !yield(prog.Base+n, line.Code) {
				return
			}
		}
	}
}
