package io

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Trace writes the human readable machine state to a text stream.
// A nil *Trace discards everything.
type Trace struct {
	Output io.Writer
}

// State writes the register and data memory snapshot line.
func (tr *Trace) State(pc int, acc int32, data []int32) (err error) {
	if tr == nil || tr.Output == nil {
		return
	}

	cells := make([]string, len(data))
	for n, value := range data {
		cells[n] = strconv.FormatInt(int64(value), 10)
	}

	_, err = fmt.Fprintf(tr.Output, "PC = %d | A = %d, DM = [%s]\n\n", pc, acc, strings.Join(cells, ","))
	return
}

// Note writes a narration comment for the instruction about to execute.
func (tr *Trace) Note(text string) (err error) {
	if tr == nil || tr.Output == nil || len(text) == 0 {
		return
	}

	_, err = fmt.Fprintf(tr.Output, "/*%s*/\n", text)
	return
}

// Printf writes a free-form message line.
func (tr *Trace) Printf(format string, args ...any) (err error) {
	if tr == nil || tr.Output == nil {
		return
	}

	_, err = fmt.Fprintf(tr.Output, format+"\n", args...)
	return
}
