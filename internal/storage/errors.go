package storage

import "fmt"

// PersistenceError reports a durable-store read or write failure.
type PersistenceError struct {
	Op   string // read, decode, encode, write, connect
	Path string // file path or database target
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
