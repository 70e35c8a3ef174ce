package classvm

import "errors"

// Error taxonomy per the error handling design: parsing, cross-class
// resolution, interpretation, and file IO each get their own sentinel
// so callers can classify a failure with errors.Is while still getting
// a descriptive message via fmt.Errorf("%w: ...", ...).
var (
	// ErrParse covers a malformed class file: bad magic, truncated
	// input, or a constant-pool tag with no known fixed width.
	ErrParse = errors.New("parse error")

	// ErrResolve covers a referenced class, method, or field that
	// cannot be found once loading has otherwise succeeded.
	ErrResolve = errors.New("resolve error")

	// ErrExecution covers stack overflow/underflow, unknown opcodes,
	// and other faults raised while interpreting bytecode.
	ErrExecution = errors.New("execution error")

	// ErrIO covers a class file that cannot be opened.
	ErrIO = errors.New("io error")
)
