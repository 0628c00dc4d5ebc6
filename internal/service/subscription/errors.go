package subscription

import "fmt"

// PersistenceError wraps any failure of the store while inserting a
// subscription: unreachable database, timeout, constraint or driver error.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store subscription: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
