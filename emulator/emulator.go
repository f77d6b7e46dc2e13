// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs tinyvm programs: it owns the CPU, the loaded
// program, the IN/OUT tape, and the optional trace.
package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/tinyvm/cpu"
	"github.com/ezrec/tinyvm/internal"
	"github.com/ezrec/tinyvm/io"
	"github.com/ezrec/tinyvm/translate"
)

var _emulator_defines = map[string]string{
	"PROGRAM_BASE":  fmt.Sprintf("%d", cpu.PROGRAM_BASE),
	"PROGRAM_LIMIT": fmt.Sprintf("%d", cpu.PROGRAM_LIMIT),
}

// Emulator state. CPU + program + IO channels.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program.

	Tape  io.Tape   // IN and OUT channel.
	Trace *io.Trace // If set, receives the machine state before every fetch.

	Limit int // Maximum instructions per run; zero is unlimited.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: cpu.NewProgram(),
	}

	emu.Cpu.SetChannel(cpu.CHANNEL_ID_INPUT, &emu.Tape)
	emu.Cpu.SetChannel(cpu.CHANNEL_ID_OUTPUT, &emu.Tape)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the emulator to run Program from its first instruction.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Reset(emu.Program)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %d instructions at %d", emu.Program.Len(), emu.Program.Base)
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns the address of the next instruction.
func (emu *Emulator) Ip() int {
	return emu.Cpu.Pc
}

// Code returns the code at the next instruction address.
func (emu *Emulator) Code() cpu.Code {
	code, _ := emu.Program.At(emu.Cpu.Pc)
	return code
}

// LineNo returns the source line number of the next instruction.
func (emu *Emulator) LineNo() int {
	line := emu.Program.Debug(emu.Cpu.Pc)
	if line == nil {
		return 0
	}

	return line.LineNo
}

// Tick performs a single fetch, decode and execute cycle.
// The pre-fetch state is written to the trace first.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	if emu.Limit > 0 && emu.Cpu.Ticks >= emu.Limit {
		err = ErrTickLimit
		return
	}

	err = emu.Trace.State(emu.Cpu.Pc, emu.Cpu.Acc, emu.Cpu.Data.Cells())
	if err != nil {
		return
	}

	status, err := emu.Cpu.Step(func(inst cpu.Instruction) error {
		return emu.Trace.Note(emu.narrate(inst))
	})
	if err != nil {
		return
	}

	done = status == cpu.STATUS_HALT

	return
}

// Run ticks the emulator until the program halts or fails.
func (emu *Emulator) Run() (err error) {
	defer func() {
		if emu.Verbose {
			log.Printf("emulator: stopped after %d instructions\n%v", emu.Ticks(), emu.Cpu)
		}
	}()

	for done, err := emu.Tick(); !done; done, err = emu.Tick() {
		if err != nil {
			return err
		}
	}

	return
}

// narrate describes what an instruction is about to do.
func (emu *Emulator) narrate(inst cpu.Instruction) (text string) {
	operand := translate.Int(inst.Operand)
	acc := translate.Int(emu.Cpu.Acc)

	switch inst.Op {
	case cpu.OP_LOAD:
		text = f("loading memory location %s to accumulator", operand)
	case cpu.OP_ADD:
		text = f("loading memory location %s to be added to accumulator value %s", operand, acc)
	case cpu.OP_STORE:
		text = f("storing accumulator in memory location %s", operand)
	case cpu.OP_SUB:
		text = f("loading memory location %s to be subtracted from accumulator value %s", operand, acc)
	case cpu.OP_IN:
		text = f("input value")
	case cpu.OP_OUT:
		text = f("outputting accumulator to screen")
	case cpu.OP_END:
		text = f("program end")
	case cpu.OP_JMP:
		text = f("jumping to memory location %s", operand)
	case cpu.OP_SKIPZ:
		text = f("skipping next instruction if accumulator value %s is zero", acc)
	}

	return
}
