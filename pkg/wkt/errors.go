package wkt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is wrapped by every error returned from Unmarshal.
var ErrMalformed = errors.New("malformed wkt")

// ParseError describes where and why WKT or EWKT input was rejected.
type ParseError struct {
	Input   string
	Pos     int
	Problem string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wkt: %s at pos %d\n%s\n%s^", e.Problem, e.Pos, e.Input, strings.Repeat(" ", e.Pos))
}

func (e *ParseError) Unwrap() error { return ErrMalformed }
