package cpu

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads a numeric program: each non-blank line holds an opcode and an
// operand as two whitespace separated decimal integers. Lines are placed at
// consecutive instruction addresses starting at PROGRAM_BASE.
//
// Opcodes are not validated here; an unknown opcode fails when executed.
func Load(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = NewProgram()

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		if len(words) != 2 {
			err = ErrFieldCount
			return
		}

		var values [2]int
		for n, word := range words {
			values[n], err = strconv.Atoi(word)
			if err != nil {
				err = ErrParseNumber(word)
				return
			}
		}

		err = prog.Append(Line{
			LineNo: lineno,
			Words:  words,
			Code:   Code{Op: values[0], Operand: values[1]},
		})
		if err != nil {
			return
		}
	}

	line = ""
	err = scanner.Err()

	return
}

// LoadFile opens and loads a numeric program file.
func LoadFile(path string) (prog *Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		err = &ErrProgramFile{Path: path, Err: err}
		return
	}
	defer inf.Close()

	return Load(inf)
}
