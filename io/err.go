package io

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Device errors
	ErrChannelFull = errors.New(f("channel full"))
	ErrNoOutput    = errors.New(f("no output attached"))
)
