package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/tinyvm/io"
)

// Channel is an I/O channel interface.
type Channel io.Channel

// CodeChannel is an IO channel index type.
type CodeChannel int

//go:generate go tool stringer -linecomment -type=CodeChannel
const (
	CHANNEL_ID_INPUT  = CodeChannel(0) // in
	CHANNEL_ID_OUTPUT = CodeChannel(1) // out
)

var _cpu_defines = map[string]string{
	"DATA_SIZE": fmt.Sprintf("%d", DATA_SIZE),
	"DATA_LAST": fmt.Sprintf("%d", DATA_SIZE-1),
}

// Cpu is the simulation context for the accumulator machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Program *Program // Instruction store.
	Data    Memory   // Data store.

	Pc  int         // Instruction address of the next fetch.
	Acc int32       // Accumulator.
	Mar int         // Address latch of the last memory access.
	Mdr Code        // Code read by the last fetch.
	Ir  Instruction // Instruction decoded from Mdr.

	Ticks int // Executed instruction counter.

	channel [2]Channel // IO channels.
}

// NewCpu creates a new CPU with no program loaded.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %d\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %d\n", "acc", cpu.Acc)
	text += fmt.Sprintf("% 5s: %d\n", "mar", cpu.Mar)
	text += fmt.Sprintf("% 5s: %v\n", "mdr", cpu.Mdr)
	text += fmt.Sprintf("% 5s: %v\n", "ir", cpu.Ir)
	for n, value := range cpu.Data {
		text += fmt.Sprintf("% 5s: %d\n", fmt.Sprintf("dm%d", n), value)
	}

	return
}

// Reset the CPU state.
// - Installs the program as the instruction store.
// - Clears the registers and data memory.
// - Zeros the tick counter.
// - Rewinds all IO channels.
// - Points the program counter at the first instruction.
func (cpu *Cpu) Reset(prog *Program) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	if prog == nil {
		err = ErrProgramMissing
		return
	}

	cpu.Program = prog
	cpu.Data.Reset()
	cpu.Acc = 0
	cpu.Mar = 0
	cpu.Mdr = Code{}
	cpu.Ir = Instruction{}
	cpu.Ticks = 0

	for _, channel := range cpu.channel {
		if channel == nil {
			continue
		}
		channel.Rewind()
	}

	cpu.Pc = prog.Base

	return
}

// SetChannel sets a channel index to a channel simulation model.
func (cpu *Cpu) SetChannel(index CodeChannel, channel Channel) {
	cpu.channel[int(index)] = channel
}

// GetChannel gets the channel simulation model by index.
func (cpu *Cpu) GetChannel(ch CodeChannel) (channel Channel, err error) {
	index := int(ch)
	if index < 0 || index >= len(cpu.channel) || cpu.channel[index] == nil {
		err = ErrChannelInvalid
		return
	}

	channel = cpu.channel[index]
	return
}

// Fetch latches the program counter, reads the code it addresses,
// and advances the program counter.
func (cpu *Cpu) Fetch() (code Code, err error) {
	if cpu.Program == nil {
		err = ErrProgramMissing
		return
	}

	code, ok := cpu.Program.At(cpu.Pc)
	if !ok {
		err = ErrInstructionAddress(cpu.Pc)
		return
	}

	cpu.Mar = cpu.Pc
	cpu.Mdr = code
	cpu.Pc++

	return
}

// Decode decodes the last fetched code into the instruction register.
func (cpu *Cpu) Decode() (inst Instruction, err error) {
	inst, err = Decode(cpu.Mdr)
	if err != nil {
		return
	}

	cpu.Ir = inst
	return
}

// Tick executes a single fetch, decode and execute cycle.
func (cpu *Cpu) Tick() (status Status, err error) {
	return cpu.Step(nil)
}

// Step executes a single fetch, decode and execute cycle, calling decoded
// (if set) with the instruction before it executes. An error from decoded
// stops the cycle before any execution side effect.
func (cpu *Cpu) Step(decoded func(inst Instruction) error) (status Status, err error) {
	_, err = cpu.Fetch()
	if err != nil {
		return
	}

	inst, err := cpu.Decode()
	if err != nil {
		return
	}

	if decoded != nil {
		err = decoded(inst)
		if err != nil {
			return
		}
	}

	status, err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// Execute executes a single decoded instruction.
// The machine state is unchanged when an error is returned.
func (cpu *Cpu) Execute(inst Instruction) (status Status, err error) {
	if cpu.Verbose {
		log.Printf("cpu: %03d: %v", cpu.Mar, inst)
	}

	status = STATUS_CONTINUE

	var value int32

	switch inst.Op {
	case OP_LOAD:
		value, err = cpu.Data.Load(inst.Operand)
		if err != nil {
			return
		}
		cpu.Mar = inst.Operand
		cpu.Acc = value
	case OP_ADD:
		value, err = cpu.Data.Load(inst.Operand)
		if err != nil {
			return
		}
		cpu.Mar = inst.Operand
		cpu.Acc += value
	case OP_STORE:
		err = cpu.Data.Store(inst.Operand, cpu.Acc)
		if err != nil {
			return
		}
		cpu.Mar = inst.Operand
	case OP_SUB:
		value, err = cpu.Data.Load(inst.Operand)
		if err != nil {
			return
		}
		cpu.Mar = inst.Operand
		cpu.Acc -= value
	case OP_IN:
		value, err = cpu.receive(CHANNEL_ID_INPUT)
		if err != nil {
			return
		}
		cpu.Acc = value
	case OP_OUT:
		err = cpu.send(CHANNEL_ID_OUTPUT, cpu.Acc)
		if err != nil {
			return
		}
	case OP_END:
		status = STATUS_HALT
	case OP_JMP:
		// The target is checked by the next fetch.
		cpu.Mar = inst.Operand
		cpu.Pc = inst.Operand
	case OP_SKIPZ:
		if cpu.Acc == 0 {
			cpu.Pc++
		}
	default:
		err = ErrOpcode(inst.Code())
		return
	}

	if cpu.Verbose && status == STATUS_HALT {
		log.Printf("cpu: halt after %d ticks", cpu.Ticks+1)
	}

	return
}

// receive reads the next value from an input channel.
func (cpu *Cpu) receive(ch CodeChannel) (value int32, err error) {
	channel, err := cpu.GetChannel(ch)
	if err != nil {
		err = &ErrChannel{Channel: ch, Err: err}
		return
	}

	value, err = channel.Receive()
	if err != nil {
		err = &ErrChannel{Channel: ch, Err: err}
		return
	}

	return
}

// send writes a value to an output channel.
func (cpu *Cpu) send(ch CodeChannel, value int32) (err error) {
	channel, err := cpu.GetChannel(ch)
	if err != nil {
		err = &ErrChannel{Channel: ch, Err: err}
		return
	}

	err = channel.Send(value)
	if err != nil {
		err = &ErrChannel{Channel: ch, Err: err}
		return
	}

	return
}
