package analytics

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageGeneration Stage = "generation"
	StageExecution  Stage = "execution"
)

var (
	ErrGeneration = errors.New("sql generation failed")
	ErrExecution  = errors.New("sql execution failed")
)

// StageError is a hard pipeline failure. errors.Is matches it against
// ErrGeneration or ErrExecution depending on Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StageGeneration:
		return fmt.Sprintf("generate sql: %v", e.Err)
	case StageExecution:
		return fmt.Sprintf("execute sql: %v", e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	switch target {
	case ErrGeneration:
		return e.Stage == StageGeneration
	case ErrExecution:
		return e.Stage == StageExecution
	}
	return false
}

func generationError(err error) error {
	return &StageError{Stage: StageGeneration, Err: err}
}

func executionError(err error) error {
	return &StageError{Stage: StageExecution, Err: err}
}
