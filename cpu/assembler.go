// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var nameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Assembler is a single pass assembler for the tinyvm instruction set.
//
//	; comment
//	.equ COUNT 3
//	loop: LOAD 0
//	      SUB $(COUNT - 2)
//	      JMP loop
//
// Mnemonics are case insensitive, and a raw integer may stand in for one.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to instruction addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines an equate for every following Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// Parse assembles a program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	prog = NewProgram()

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		asm.Equate["LINENO"] = strconv.Itoa(lineno)

		text_comment := strings.SplitN(text, ";", 2)
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = splitWords(line)
		if err != nil {
			return
		}

		err = asm.parseWords(prog, words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of forward labels.
	for n := range prog.Lines {
		op := &prog.Lines[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		ip, ok := asm.Label[op.LinkLabel]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		op.Code.Operand = ip
	}

	return
}

// splitWords splits a line on whitespace, keeping $(...) expressions whole.
func splitWords(line string) (words []string, err error) {
	var word []rune
	depth := 0

	runes := []rune(line)
	for n, r := range runes {
		switch {
		case r == '(' && depth == 0 && n > 0 && runes[n-1] == '$':
			depth++
		case r == '(' && depth > 0:
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0 && (r == ' ' || r == '\t'):
			if len(word) > 0 {
				words = append(words, string(word))
				word = word[:0]
			}
			continue
		}
		word = append(word, r)
	}

	if depth != 0 {
		err = ErrParseExpression(line)
		return
	}

	if len(word) > 0 {
		words = append(words, string(word))
	}

	return
}

// validName returns true if the word can name a label or equate.
func validName(word string) bool {
	if !nameRegexp.MatchString(word) {
		return false
	}

	_, is_op := ParseOpcode(word)
	return !is_op
}

// parseWords assembles the words of one source line.
func (asm *Assembler) parseWords(prog *Program, words []string, lineno int) (err error) {
	// label: ...
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !validName(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		_, ok = asm.Equate[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = prog.End()
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .equ NAME value
	if words[0] == ".equ" {
		if len(words) != 3 || !validName(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		_, ok = asm.Label[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		var value int
		value, err = asm.valueOf(words[2])
		if err != nil {
			return
		}
		asm.Equate[words[1]] = strconv.Itoa(value)
		return
	}

	op, err := asm.opcodeOf(words[0])
	if err != nil {
		return
	}

	args := words[1:]
	if len(args) > 1 {
		err = ErrOpcodeExtraArgs
		return
	}

	var operand int
	var link string
	if len(args) == 0 {
		if Opcode(op).HasOperand() {
			err = ErrOperandMissing
			return
		}
	} else {
		operand, link, err = asm.operandOf(args[0])
		if err != nil {
			return
		}
	}

	err = prog.Append(Line{
		LineNo:    lineno,
		Words:     words,
		Code:      Code{Op: op, Operand: operand},
		LinkLabel: link,
	})

	return
}

// opcodeOf returns the raw opcode for a mnemonic or integer.
func (asm *Assembler) opcodeOf(word string) (op int, err error) {
	opcode, ok := ParseOpcode(word)
	if ok {
		op = int(opcode)
		return
	}

	v64, perr := strconv.ParseInt(word, 0, 32)
	if perr != nil {
		err = ErrOpcodeInvalid
		return
	}

	op = int(v64)
	return
}

// operandOf returns the value of an operand, or the name of a label
// that is not yet defined.
func (asm *Assembler) operandOf(word string) (value int, link string, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	_, is_number := err.(ErrParseNumber)
	if is_number && validName(word) {
		err = nil
		link = word
	}

	return
}

// valueOf returns the value of a number, equate, label or $(...) expression.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		return asm.parenEval(word[2 : len(word)-1])
	}

	ip, ok := asm.Label[word]
	if ok {
		value = ip
		return
	}

	equ, ok := asm.Equate[word]
	if ok {
		word = equ
	}

	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}

	prog := "rc = " + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		if asm.Verbose {
			log.Printf("asm: $(%v): %v", expr, err)
		}
		err = ErrParseExpression(expr)
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	st_int64, ok := st_int.Int64()
	if !ok || st_int64 != int64(int32(st_int64)) {
		err = ErrParseExpression(expr)
		return
	}

	value = int(st_int64)
	return
}
