package io

import (
	"bufio"
	"io"
	"strconv"
)

// flusher is implemented by buffered writers such as bufio.Writer.
type flusher interface {
	Flush() error
}

// Tape provides sequential I/O of whitespace delimited integers.
// It wraps an io.Reader for input and io.Writer for output, converting
// between machine words and their decimal text.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
	scanned io.Reader // Input the scanner was created for.
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Receive reads the next integer from the input stream.
// Pending output is flushed first, so that an interactive user
// sees everything written before the machine waits for input.
func (tc *Tape) Receive() (value int32, err error) {
	if fl, ok := tc.Output.(flusher); ok {
		err = fl.Flush()
		if err != nil {
			return
		}
	}

	if tc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	if tc.scanner == nil || tc.scanned != tc.Input {
		tc.scanner = bufio.NewScanner(tc.Input)
		tc.scanner.Split(bufio.ScanWords)
		tc.scanned = tc.Input
	}

	if !tc.scanner.Scan() {
		err = tc.scanner.Err()
		if err == nil {
			err = ErrChannelEmpty
		}
		return
	}

	word := tc.scanner.Text()
	v64, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		err = ErrParseInput(word)
		return
	}

	value = int32(v64)
	return
}

// Send writes a value to the output stream, one value per line.
// Output is discarded when no writer is attached.
func (tc *Tape) Send(value int32) (err error) {
	if tc.Output == nil {
		return
	}

	line := strconv.AppendInt(nil, int64(value), 10)
	line = append(line, '\n')
	_, err = tc.Output.Write(line)

	return
}
