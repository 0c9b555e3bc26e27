package memory

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount      = errors.New("memory: amount must be positive")
	ErrInsufficientMemory = errors.New("memory: insufficient free memory")
	ErrAllocationFailed   = errors.New("memory: allocation failed")
	ErrLimitExceeded      = errors.New("memory: allocation limit exceeded")
	ErrClosed             = errors.New("memory: manager closed")
)

// InsufficientMemoryError is returned when the pre-allocation check fails.
type InsufficientMemoryError struct {
	RequestedMB int
	FreeMB      int
	MinFreeMB   int
}

func (e *InsufficientMemoryError) Error() string {
	return fmt.Sprintf("cannot allocate %d MB: only %d MB free (minimum %d MB required)",
		e.RequestedMB, e.FreeMB, e.MinFreeMB)
}

func (e *InsufficientMemoryError) Is(target error) bool {
	return target == ErrInsufficientMemory
}

// AllocationFailedError is returned when the OS refuses a block mid-request.
// Every block acquired by the request has already been returned.
type AllocationFailedError struct {
	RequestedMB int
	AcquiredMB  int
	Err         error
}

func (e *AllocationFailedError) Error() string {
	return fmt.Sprintf("failed to allocate memory after %d of %d MB: %v",
		e.AcquiredMB, e.RequestedMB, e.Err)
}

func (e *AllocationFailedError) Is(target error) bool {
	return target == ErrAllocationFailed
}

func (e *AllocationFailedError) Unwrap() error { return e.Err }

// LimitExceededError is returned when an allocation would pass the cap.
type LimitExceededError struct {
	RequestedMB int
	AllocatedMB int
	LimitMB     int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("cannot allocate %d MB: would exceed maximum of %d MB (holding %d MB)",
		e.RequestedMB, e.LimitMB, e.AllocatedMB)
}

func (e *LimitExceededError) Is(target error) bool {
	return target == ErrLimitExceeded
}
