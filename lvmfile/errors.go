package lvmfile

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when the input ends in the middle of a program.
var ErrUnexpectedEOF = errors.New("lvmfile: unexpected end of input")

// ErrMalformed is returned for input which can not be a program.
type ErrMalformed struct {
	Offset int64
	Msg    string
}

func (e ErrMalformed) Error() string {
	return fmt.Sprintf("lvmfile: malformed program at offset %d: %s", e.Offset, e.Msg)
}
