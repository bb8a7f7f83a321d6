package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound           = errors.New("db: key not found")
	ErrUnsupportedConstraint = errors.New("db: unsupported constraint")
)

// Op constants name the failing operation for error context.
const (
	OpFind         = "FIND"
	OpGetCard      = "GET_CARD"
	OpCount        = "COUNT"
	OpInsert       = "INSERT"
	OpEnsureSchema = "ENSURE_SCHEMA"
	OpGet          = "GET"
	OpSet          = "SET"
	OpIncr         = "INCR"
	OpPing         = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// UnsupportedConstraintError reports a constraint a backend cannot translate.
func UnsupportedConstraintError(backend, constraint string) error {
	return fmt.Errorf("%w: %s cannot express %s", ErrUnsupportedConstraint, backend, constraint)
}
