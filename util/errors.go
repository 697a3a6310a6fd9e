package util

import (
	"fmt"

	"golang.org/x/xerrors"
)

// WrapErr prefixes err with the failed step, keeping it inspectable.
func WrapErr(msg string, err error) error {
	return xerrors.Errorf("%s: %w", msg, err)
}

// Kind classifies engine failures so that callers can decide between
// surfacing an error and falling back to pass-through output.
type Kind int

const (
	KindUnknown Kind = iota
	AllocationFailure
	ArgumentBindingFailure
	CompileOrBuildFailure
	TransferFailure
	DispatchFailure
	InvalidResourceState
	InvalidParameter
)

func (k Kind) String() string {
	switch k {
	case AllocationFailure:
		return "allocation failure"
	case ArgumentBindingFailure:
		return "argument binding failure"
	case CompileOrBuildFailure:
		return "compile or build failure"
	case TransferFailure:
		return "transfer failure"
	case DispatchFailure:
		return "dispatch failure"
	case InvalidResourceState:
		return "invalid resource state"
	case InvalidParameter:
		return "invalid parameter"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error around a formatted message.
func Errorf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: xerrors.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind
	}
	var b *BuildError
	if xerrors.As(err, &b) {
		return CompileOrBuildFailure
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// BuildError carries the compiler log of a failed program build.
type BuildError struct {
	Log string
}

func (e *BuildError) Error() string {
	return "build program: " + e.Log
}
