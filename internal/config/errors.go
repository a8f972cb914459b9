package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error is a configuration validation failure.
type Error struct {
	// Path is the offending field, e.g. "server.listen". Empty when the
	// failure is not tied to one field.
	Path string

	Message string

	// Pos is the source position, when the input format provides one.
	Pos token.Pos
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// fromCUE converts the first CUE error into an *Error, keeping its position.
func fromCUE(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	out := &Error{
		Path:    strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	if len(errs) > 1 {
		out.Message += fmt.Sprintf(" (and %d more errors)", len(errs)-1)
	}
	return out
}
