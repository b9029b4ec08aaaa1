package api

import (
	"github.com/ezrec/ls8/translate"
)

var f = translate.From

// ErrFormat is an unknown program format.
type ErrFormat string

func (err ErrFormat) Error() string {
	return f("format '%v' unknown", string(err))
}
