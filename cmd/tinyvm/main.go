// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	goio "io"
	"log"
	"os"

	"github.com/tebeka/atexit"

	"github.com/ezrec/tinyvm/cpu"
	"github.com/ezrec/tinyvm/emulator"
	"github.com/ezrec/tinyvm/io"
)

// loadProgram loads a numeric program, or assembles a mnemonic one with the
// emulator defines predefined.
func loadProgram(path string, assemble bool, emu *emulator.Emulator, verbose bool) (prog *cpu.Program, err error) {
	if !assemble {
		return cpu.LoadFile(path)
	}

	inf, err := os.Open(path)
	if err != nil {
		err = &cpu.ErrProgramFile{Path: path, Err: err}
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	return asm.Parse(inf)
}

// run executes the command line, and returns the process exit code.
func run(args []string, stdin goio.Reader, stdout goio.Writer, stderr goio.Writer) (code int) {
	var assemble bool
	var input string
	var output string
	var quiet bool
	var verbose bool
	var limit int

	logger := log.New(stderr, "", 0)

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&assemble, "a", false, "Assemble mnemonic source instead of loading opcode pairs")
	flags.StringVar(&input, "i", "-", "Input tape for IN")
	flags.StringVar(&output, "o", "-", "Output tape for OUT")
	flags.BoolVar(&quiet, "q", false, "Quiet mode, no trace")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")
	flags.IntVar(&limit, "limit", 0, "Maximum instructions to execute, 0 for no limit")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s [options] <input_file>\n", args[0])
		flags.PrintDefaults()
	}

	err := flags.Parse(args[1:])
	if err != nil {
		return 1
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return 1
	}

	console := bufio.NewWriter(stdout)
	defer console.Flush()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Limit = limit

	if !quiet {
		emu.Trace = &io.Trace{Output: console}
	}

	path := flags.Arg(0)

	prog, err := loadProgram(path, assemble, emu, verbose)
	if errors.Is(err, cpu.ErrFileNotFound) {
		logger.Printf("ERROR: %v", err)
		return 1
	} else if err != nil {
		logger.Printf("%v: %v", path, err)
		return 1
	}

	emu.Program = prog

	if input == "-" {
		emu.Tape.Input = stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			logger.Printf("%v: %v", input, err)
			return 1
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = console
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			logger.Printf("%v: %v", output, err)
			return 1
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	emu.Trace.Printf("Assembling Program...")
	emu.Trace.Printf("Program Assembled.\nRun.\n")

	err = emu.Reset()
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}

	err = emu.Run()
	if err != nil {
		console.Flush()
		logger.Printf("%v: %v", path, err)
		return 1
	}

	emu.Trace.Printf("Program complete")

	return 0
}

func main() {
	atexit.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
