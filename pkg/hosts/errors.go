package hosts

import (
	"fmt"
)

// IOError reports that the hosts file could not be opened, read, written or
// made writable.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("hosts file %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	_, ok := target.(*IOError)
	return ok
}

// ParseError reports a URL that could not be parsed.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse url %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// UnsupportedError reports input that the resolver cannot work with, such as
// a URL without a domain.
type UnsupportedError struct {
	Input  string
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported url %q: %s", e.Input, e.Reason)
}

func (e *UnsupportedError) Is(target error) bool {
	_, ok := target.(*UnsupportedError)
	return ok
}

// NotFoundError reports that no record for Host exists in the table.
type NotFoundError struct {
	Host string
}

func (e *NotFoundError) Error() string {
	return "no hosts record for " + e.Host
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// Sentinels for use with errors.Is.
var (
	ErrIO          error = &IOError{}
	ErrParse       error = &ParseError{}
	ErrUnsupported error = &UnsupportedError{}
	ErrNotFound    error = &NotFoundError{}
)

func ioFailure(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
