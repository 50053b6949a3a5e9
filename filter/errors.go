package filter

import "fmt"

// CompileError wraps a gojq parse/compile failure with the offending source.
type CompileError struct {
	Source string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling filter %q: %v", e.Source, e.Cause)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// EvalError wraps a runtime failure while evaluating a compiled filter.
type EvalError struct {
	Source string
	Cause  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating filter %q: %v", e.Source, e.Cause)
}

func (e *EvalError) Unwrap() error { return e.Cause }
