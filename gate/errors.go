package gate

import "fmt"

// ErrorClass classifies a backend error for metrics purposes. Classification
// never alters state transitions; it only informs operators.
type ErrorClass int

const (
	// Retryable covers any error not recognized as programming-class.
	// Unknown errors default to retryable.
	Retryable ErrorClass = iota
	// Programming covers invalid argument, missing attribute/key, type
	// mismatch, and unimplemented errors.
	Programming
)

// String returns the lower-case class name.
func (c ErrorClass) String() string {
	if c == Programming {
		return "programming"
	}
	return "retryable"
}

// CircuitOpenError is returned when a call is rejected because the gate is
// OPEN and no fallback was supplied.
type CircuitOpenError struct {
	BackendID string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("gate: circuit open for backend %q", e.BackendID)
}

// ServiceDegradedError is returned when a call is rejected because the gate
// is DECONSTRUCTED and no fallback was supplied.
type ServiceDegradedError struct {
	BackendID         string
	FallbackAvailable bool
}

func (e *ServiceDegradedError) Error() string {
	return fmt.Sprintf("gate: service degraded for backend %q (fallback_available=%t)",
		e.BackendID, e.FallbackAvailable)
}

// TimeoutError is returned when an invocation exceeds CallTimeout.
type TimeoutError struct {
	BackendID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gate: call to backend %q timed out", e.BackendID)
}
