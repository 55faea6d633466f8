package charsetdemo

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEncoding = errors.New("unknown encoding")

	ErrNetwork           = errors.New("network error")
	ErrDecode            = errors.New("decode error")
	ErrMissingDependency = errors.New("missing dependency")
)

// NetworkError is a non-2xx response or a failed round trip.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error: %d %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("network error: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// DecodeError covers bytes that are not valid in the declared encoding,
// runes that cannot be encoded, and JSON that does not parse.
type DecodeError struct {
	Op       string // "decode", "encode" or "json"
	Encoding string
	Offset   int // -1 when unknown
	Err      error
}

func (e *DecodeError) Error() string {
	msg := e.Op
	switch {
	case e.Op == "json":
		msg = "invalid JSON"
	case e.Encoding != "":
		msg += " " + e.Encoding
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// MissingDependencyError is returned by a path whose delegated client was
// never configured.
type MissingDependencyError struct {
	Name string
}

func (e *MissingDependencyError) Error() string {
	return e.Name + " is not loaded"
}

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }
