// Package io provides the I/O channels and trace output of the tinyvm emulator.
// Channels carry whole machine words: the integer Tape reads and writes
// text streams, and Temporary is a bounded in-memory queue.
package io

// Channel defines the interface for the IN and OUT devices of the CPU.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive blocks until the next value is available.
	Receive() (value int32, err error)
	// Send writes a single value to the channel.
	Send(value int32) error
}
