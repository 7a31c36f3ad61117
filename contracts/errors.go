package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConversion      = errors.New("conversion failed")
	ErrUnsupportedMode = errors.New("unsupported mode")
)

// ValidationError reports malformed or unsupported input. It is never worth retrying.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error        { return e.Cause }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConversionFailure reports an error raised while transforming or rendering valid input.
type ConversionFailure struct {
	Stage string
	Cause error
}

func (e *ConversionFailure) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s failed", e.Stage)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Cause)
}

func (e *ConversionFailure) Unwrap() error        { return e.Cause }
func (e *ConversionFailure) Is(target error) bool { return target == ErrConversion }

type UnsupportedModeError struct {
	Mode Mode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported conversion mode %q", string(e.Mode))
}

func (e *UnsupportedModeError) Is(target error) bool { return target == ErrUnsupportedMode }

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func InvalidWithCause(cause error, format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Failed(stage string, cause error) error {
	return &ConversionFailure{Stage: stage, Cause: cause}
}

// IsRetryable reports whether a queue may retry the call that produced err.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConversion)
}
