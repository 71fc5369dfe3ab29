// state.go defines the lifecycle of a device.

package mcscaler

import (
	"fmt"
	"slices"
)

type State uint32

const (
	StateClosed = State(iota)
	StateOpen
	StateInitialized
	StateRunning
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("unknown_state_%d", uint32(s))
	}
}

type operation string

const (
	operationOpen    = operation("open")
	operationInit    = operation("init")
	operationEnable  = operation("enable")
	operationShot    = operation("shot")
	operationDisable = operation("disable")
	operationClose   = operation("close")
	operationRecover = operation("recover_overflow")
)

// allowedStates lists the states every operation may be started in.
var allowedStates = map[operation][]State{
	operationOpen:    {StateClosed},
	operationInit:    {StateOpen},
	operationEnable:  {StateInitialized, StateDisabled},
	operationShot:    {StateInitialized, StateRunning},
	operationDisable: {StateInitialized, StateRunning},
	operationClose:   {StateOpen, StateInitialized, StateDisabled},
	operationRecover: {StateRunning},
}

func (op operation) check(s State) error {
	if !slices.Contains(allowedStates[op], s) {
		return ErrInvalidState{Op: string(op), State: s}
	}
	return nil
}
