package model

import (
	"errors"
	"fmt"
)

// ErrDataShape marks a response that lacks a field the client relies on.
var ErrDataShape = errors.New("unexpected response shape")

// DataShapeError reports a missing or malformed response field.
// Index is the candidate position, or -1 when the field is not per candidate.
type DataShapeError struct {
	Query string
	Index int
	Field string
	Err   error
}

func (e *DataShapeError) Error() string {
	msg := "malformed body"
	if e.Field != "" {
		msg = "missing field " + e.Field
	}
	if e.Query != "" {
		msg += fmt.Sprintf(" for query %q", e.Query)
	}
	if e.Index >= 0 {
		msg += fmt.Sprintf(" in result %d", e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return ErrDataShape.Error() + ": " + msg
}

// Is reports ErrDataShape so callers can match with errors.Is.
func (e *DataShapeError) Is(target error) bool {
	return target == ErrDataShape
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}
