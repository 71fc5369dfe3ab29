package irq

import (
	"fmt"
)

type ErrRejected struct {
	Reason error
}

func (e ErrRejected) Error() string {
	return fmt.Sprintf("the interrupt is rejected: %v", e.Reason)
}

func (e ErrRejected) Unwrap() error {
	return e.Reason
}

type ErrFrameFailed struct {
	Status Status
}

func (e ErrFrameFailed) Error() string {
	return fmt.Sprintf("the engine reported errors during the frame: %s", e.Status)
}
