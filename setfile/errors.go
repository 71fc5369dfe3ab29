package setfile

import (
	"fmt"
)

type ErrBadMagic struct {
	Magic uint32
}

func (e ErrBadMagic) Error() string {
	return fmt.Sprintf("invalid setfile magic 0x%08X, expected 0x%08X", e.Magic, Magic)
}

type ErrVersion struct {
	Version uint32
}

func (e ErrVersion) Error() string {
	return fmt.Sprintf("unsupported setfile version %d, expected %d", e.Version, Version)
}

type ErrSize struct {
	Expected int
	Actual   int
}

func (e ErrSize) Error() string {
	return fmt.Sprintf("invalid setfile size: expected %d, received %d", e.Expected, e.Actual)
}

type ErrNoTable struct {
	Position Position
}

func (e ErrNoTable) Error() string {
	return fmt.Sprintf("no setfile is loaded for sensor position %d", e.Position)
}

type ErrNoScenario struct {
	Position Position
	Scenario uint32
	Count    int
}

func (e ErrNoScenario) Error() string {
	return fmt.Sprintf("scenario %d is out of range of the setfile of sensor position %d (%d entries)", e.Scenario, e.Position, e.Count)
}
