package cpu

import (
	"fmt"
	"strings"
)

// Opcode is a decoded operation.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_LOAD  = Opcode(1) // LOAD
	OP_ADD   = Opcode(2) // ADD
	OP_STORE = Opcode(3) // STORE
	OP_SUB   = Opcode(4) // SUB
	OP_IN    = Opcode(5) // IN
	OP_OUT   = Opcode(6) // OUT
	OP_END   = Opcode(7) // END
	OP_JMP   = Opcode(8) // JMP
	OP_SKIPZ = Opcode(9) // SKIPZ
)

// Status is the outcome of executing one instruction.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_CONTINUE = Status(0) // continue
	STATUS_HALT     = Status(1) // halt
)

// Valid returns true if the opcode is one of the nine operations.
func (op Opcode) Valid() bool {
	return op >= OP_LOAD && op <= OP_SKIPZ
}

// DataAccess returns true if the operand is a data memory address.
func (op Opcode) DataAccess() bool {
	return op >= OP_LOAD && op <= OP_SUB
}

// HasOperand returns true if the operation uses its operand.
func (op Opcode) HasOperand() bool {
	return op.DataAccess() || op == OP_JMP
}

// ParseOpcode looks up an opcode by its mnemonic, ignoring case.
func ParseOpcode(name string) (op Opcode, ok bool) {
	name = strings.ToUpper(name)
	for op = OP_LOAD; op <= OP_SKIPZ; op++ {
		if op.String() == name {
			ok = true
			return
		}
	}

	op = 0
	return
}

// Code is a raw (opcode, operand) pair, exactly as loaded.
// A Code may hold an opcode that does not decode.
type Code struct {
	Op      int
	Operand int
}

// MakeCode creates the Code of a decoded operation.
func MakeCode(op Opcode, operand int) Code {
	return Code{Op: int(op), Operand: operand}
}

// String returns the assembly language representation of the code.
func (code Code) String() string {
	inst, err := Decode(code)
	if err != nil {
		return fmt.Sprintf("%d %d", code.Op, code.Operand)
	}

	return inst.String()
}

// Instruction is a decoded Code.
type Instruction struct {
	Op      Opcode
	Operand int
}

// Decode converts a raw code into an instruction.
// Opcodes outside of OP_LOAD..OP_SKIPZ fail with ErrOpcode.
func Decode(code Code) (inst Instruction, err error) {
	op := Opcode(code.Op)
	if !op.Valid() {
		err = ErrOpcode(code)
		return
	}

	inst = Instruction{Op: op, Operand: code.Operand}
	return
}

// Code returns the raw form of the instruction.
func (inst Instruction) Code() Code {
	return MakeCode(inst.Op, inst.Operand)
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	if inst.Op.HasOperand() {
		return fmt.Sprintf("%v %d", inst.Op, inst.Operand)
	}

	return inst.Op.String()
}
