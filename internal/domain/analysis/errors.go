package analysis

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the id matched neither user history nor sample data.
var ErrNotFound = errors.New("analysis not found")

// ErrDuplicateID indicates a write with an id already present in the store.
// Ids are assigned fresh per record; a collision is a defect and is never
// resolved by silently overwriting.
var ErrDuplicateID = errors.New("duplicate analysis id")

// UnparsableError means no JSON object could be recovered from the model
// output. Raw keeps the original text verbatim; it is the only diagnostic
// evidence of what the model actually said.
type UnparsableError struct {
	Raw string
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("unparsable model response (%d bytes of raw text)", len(e.Raw))
}

// PersistenceError means the durable write failed after the analysis was
// produced. The record is still returned to the caller alongside this error
// so it can be displayed and the save retried.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("analysis not durably saved: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
