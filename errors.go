package wdb

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotFound         = errors.New("not found")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrMalformedStream  = errors.New("malformed stream")

	ErrDatabaseNotFound   = fmt.Errorf("database %w", ErrNotFound)
	ErrCollectionNotFound = fmt.Errorf("collection %w", ErrNotFound)
	ErrKeyNotFound        = fmt.Errorf("key %w", ErrNotFound)
	ErrSnapshotNotFound   = fmt.Errorf("snapshot %w", ErrNotFound)
)

// DataError describes a problem with encoded data at a given offset.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func malformedf(data []byte, off int, format string, args ...any) error {
	return dataErrf(data, off, ErrMalformedStream, format, args...)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

func capacityErrf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrCapacityExceeded)
}

func typeMismatch(v Value, want string) error {
	return fmt.Errorf("value is %v, wanted %s: %w", v.Kind(), want, ErrTypeMismatch)
}

func checkLen(what, s string) error {
	if len(s) > maxCount {
		return capacityErrf("%s is %d bytes, max %d", what, len(s), maxCount)
	}
	return nil
}
