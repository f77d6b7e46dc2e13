package emulator

import (
	"errors"

	"github.com/ezrec/tinyvm/translate"
)

var f = translate.From

var (
	// Emulator errors
	ErrTickLimit = errors.New(f("instruction limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Ip     int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("address %s: %v", translate.Int(err.Ip), err.Err)
	}
	return f("address %s line %s: %v", translate.Int(err.Ip), translate.Int(err.LineNo), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
