package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage marks every failure of the underlying file store.
	ErrStorage = errors.New("workspace storage failure")
	// ErrInvalidName rejects names that are not flat file names.
	ErrInvalidName = errors.New("invalid file name")
)

// StorageError wraps a file store failure with the operation and file involved.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name == "" {
		return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrStorage, e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op, name string, err error) error {
	return &StorageError{Op: op, Name: name, Err: err}
}
