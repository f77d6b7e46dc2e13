package io

import (
	"errors"

	"github.com/ezrec/tinyvm/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull  = errors.New(f("channel full"))
	ErrChannelEmpty = errors.New(f("channel empty"))
	ErrChannelInput = errors.New(f("channel input invalid"))
)

// ErrParseInput is returned when an input word is not a machine integer.
type ErrParseInput string

func (err ErrParseInput) Error() string {
	return f("'%v' is not an integer", string(err))
}

func (err ErrParseInput) Is(target error) bool {
	return target == ErrChannelInput
}
