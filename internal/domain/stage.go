package domain

import (
	"errors"
	"fmt"
)

// DispatchStage names the pipeline step an invocation reached.
type DispatchStage string

const (
	StageReceived   DispatchStage = "received"
	StageBuilt      DispatchStage = "built"
	StageSent       DispatchStage = "sent"
	StageNormalized DispatchStage = "normalized"
	StageReturned   DispatchStage = "returned"
)

// StageError records the last stage an invocation completed before it failed.
type StageError struct {
	Stage DispatchStage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func NewStageError(stage DispatchStage, err error) error {
	if err == nil {
		return nil
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

func StageFrom(err error) (DispatchStage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
