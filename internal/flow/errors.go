package flow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotReady is wrapped by every ExecutionError raised because the
	// generator was never configured.
	ErrNotReady = errors.New("generator not configured")

	// ErrInvalidOutput is wrapped by ExecutionErrors raised because the
	// generator's output failed the output schema.
	ErrInvalidOutput = errors.New("output failed schema validation")

	// ErrEmptyOutput is wrapped when the generator returned nothing.
	ErrEmptyOutput = errors.New("generator returned no output")
)

// FieldError names one schema rule a value broke.
type FieldError struct {
	// Field is the JSON path of the offending value, e.g.
	// "questions[2].correctOptionIndex".
	Field string

	// Rule is the failed rule, e.g. "required" or "oneof".
	Rule string

	// Param is the rule parameter, if any.
	Param string
}

func (f FieldError) String() string {
	if f.Param == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Rule)
	}
	return fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param)
}

func joinFields(fields []FieldError) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}

// ValidationError reports input that failed its schema. No external call
// was made.
type ValidationError struct {
	Flow   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Flow, joinFields(e.Fields))
}

// ExecutionError reports a failed or rejected external generation.
// Fields is set when the output failed its schema.
type ExecutionError struct {
	Flow   string
	Fields []FieldError
	Err    error
}

func (e *ExecutionError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %v: %s", e.Flow, e.Err, joinFields(e.Fields))
	}
	return fmt.Sprintf("%s: execution failed: %v", e.Flow, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsExecution reports whether err (or any error in its chain) is an
// ExecutionError.
func IsExecution(err error) bool {
	var e *ExecutionError
	return errors.As(err, &e)
}
