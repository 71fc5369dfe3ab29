// errors.go defines the errors of the device operations.

package mcscaler

import (
	"fmt"
	"time"
)

// ErrAllocation is returned by Open if the staging regions cannot be
// obtained.
type ErrAllocation struct {
	Err error
}

func (e ErrAllocation) Error() string {
	return fmt.Sprintf("unable to allocate the command staging regions: %v", e.Err)
}

func (e ErrAllocation) Unwrap() error {
	return e.Err
}

// ErrResource is returned by Init if a DMA descriptor cannot be created.
type ErrResource struct {
	Err error
}

func (e ErrResource) Error() string {
	return fmt.Sprintf("unable to initialize the DMA resources: %v", e.Err)
}

func (e ErrResource) Unwrap() error {
	return e.Err
}

type ErrTimeout struct {
	Op      string
	Timeout time.Duration
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("%s: timed out after %v", e.Op, e.Timeout)
}

type ErrInvalidState struct {
	Op    string
	State State
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("%s is not allowed in state %s", e.Op, e.State)
}

// ErrOverflowRecovery is reported while the engine is being recovered from
// an overflow.
type ErrOverflowRecovery struct{}

func (ErrOverflowRecovery) Error() string {
	return "the device is recovering from an overflow"
}

// ErrBusy is returned by Shot while the previous frame is still processed.
type ErrBusy struct {
	FrameID uint64
}

func (e ErrBusy) Error() string {
	return fmt.Sprintf("frame %d is still in flight", e.FrameID)
}

// ErrInvalidRequest is a request-wide configuration error: nothing of the
// frame can be processed.
type ErrInvalidRequest struct {
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid frame request: %s", e.Reason)
}
