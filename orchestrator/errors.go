package orchestrator

import "errors"

var (
	// ErrNotInitialized is returned by Discover when called before
	// Initialize (or Rebuild) has built the index at least once.
	ErrNotInitialized = errors.New("orchestrator: not initialized, call Initialize first")

	// ErrEmptyIndex is returned when the tool catalog has no tools to
	// index, distinguishing a deliberately empty catalog from a missed
	// Initialize call.
	ErrEmptyIndex = errors.New("orchestrator: tool index is empty")
)
