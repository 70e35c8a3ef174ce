package classvm

import (
	"fmt"
	"io"
	"os"
)

// Options controls a single end-to-end run of the interpreter: which
// class to load, where to load referenced classes from, and where
// program/trace output lands.
type Options struct {
	ClassName string
	Source    ByteSource
	Stdout    io.Writer
	Trace     bool
	TraceOut  io.Writer
}

// Run ties the class loader and interpreter together exactly as §2
// describes the data flow: load the named class file (transitively
// loading anything it references), merge it with the built-ins,
// locate main, and execute it. This is the adapted descendant of the
// teacher's RunProgram/RunProgramDebugMode pair
// (KTStephano-GVM/vm/run.go) — one entry point instead of two, since
// tracing here is a per-Interpreter flag rather than a separate
// interactive command loop.
func Run(opts Options) error {
	if opts.ClassName == "" {
		return fmt.Errorf("%w: no class name given", ErrIO)
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	registry := NewRegistry()
	if err := RegisterBuiltins(registry, stdout); err != nil {
		return err
	}

	loader := NewLoader(registry, opts.Source)
	if _, err := loader.Load(opts.ClassName); err != nil {
		return err
	}

	interp := NewInterpreter(registry)
	interp.Trace = opts.Trace
	interp.TraceOut = opts.TraceOut

	return interp.RunMain()
}
