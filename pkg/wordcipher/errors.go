package wordcipher

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrFormat       = errors.New("format error")
	ErrIO           = errors.New("io error")
	ErrNotFound     = errors.New("not found")
)

// Error records the operation that failed, its kind and the underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalid(op, msg string) error {
	return &Error{Kind: ErrInvalidInput, Op: op, Err: errors.New(msg)}
}

func ioErr(op string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Err: err}
}
