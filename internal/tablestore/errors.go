package tablestore

import (
	"errors"
	"fmt"
)

// StoreError is returned when the table service answers a call with
// success != true. Transport failures are returned as their own errors.
type StoreError struct {
	Op      string
	Table   string
	Message string
}

func (e *StoreError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "store reported failure"
	}
	return fmt.Sprintf("tablestore %s %s: %s", e.Op, e.Table, msg)
}

// NewStoreError constructs a StoreError.
func NewStoreError(op, table, message string) *StoreError {
	return &StoreError{Op: op, Table: table, Message: message}
}

// IsStoreError reports whether err (or anything it wraps) is a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
