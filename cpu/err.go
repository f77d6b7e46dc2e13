package cpu

import (
	"errors"

	"github.com/ezrec/tinyvm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrInvalidAddress    = errors.New(f("invalid instruction address"))
	ErrAddressOutOfRange = errors.New(f("data address out of range"))
	ErrUnknownOpcode     = errors.New(f("unknown opcode"))
	ErrProgramMissing    = errors.New(f("program missing"))
	ErrChannelInvalid    = errors.New(f("channel invalid"))
	ErrChannelFailed     = errors.New(f("channel failed"))

	// Loader errors
	ErrFileNotFound = errors.New(f("file not found"))
	ErrProgramFull  = errors.New(f("program full"))
	ErrFieldCount   = errors.New(f("expected opcode and operand"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrOpcodeExtraArgs = errors.New(f("excessive arguments"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
)

// ErrOpcode is returned when a code does not decode.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("unknown opcode %s (operand %s)", translate.Int(eo.Op), translate.Int(eo.Operand))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrUnknownOpcode
}

// ErrInstructionAddress is returned when the program counter leaves the program.
type ErrInstructionAddress int

func (ea ErrInstructionAddress) Error() string {
	return f("instruction address %s is outside of the program", translate.Int(ea))
}

func (ea ErrInstructionAddress) Is(err error) bool {
	return err == ErrInvalidAddress
}

// ErrDataAddress is returned when a data operand is not a Memory address.
type ErrDataAddress int

func (ea ErrDataAddress) Error() string {
	return f("data address %s is not in [0,%s]", translate.Int(ea), translate.Int(DATA_SIZE-1))
}

func (ea ErrDataAddress) Is(err error) bool {
	return err == ErrAddressOutOfRange
}

// ErrChannel is returned when an IN or OUT transfer fails.
type ErrChannel struct {
	Channel CodeChannel
	Err     error
}

func (err *ErrChannel) Error() string {
	return f("channel %v: %v", err.Channel, err.Err)
}

func (err *ErrChannel) Is(target error) bool {
	return target == ErrChannelFailed
}

func (err *ErrChannel) Unwrap() error {
	return err.Err
}

// ErrProgramFile is returned when a program file cannot be opened.
type ErrProgramFile struct {
	Path string
	Err  error
}

func (err *ErrProgramFile) Error() string {
	return f("could not open file %v: %v", err.Path, err.Err)
}

func (err *ErrProgramFile) Is(target error) bool {
	return target == ErrFileNotFound
}

func (err *ErrProgramFile) Unwrap() error {
	return err.Err
}

// ErrSyntax locates a load or assembly error in the program source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %s '%v' %v", translate.Int(err.LineNo), err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
