package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing means an input file does not exist.
	ErrInputMissing = errors.New("input file does not exist")
	// ErrNoRecords means the input parsed into zero records.
	ErrNoRecords = errors.New("no records found")
	// ErrNoMatches means no record has the target language.
	ErrNoMatches = errors.New("no records in target language")
)

// StageError reports which stage of the workflow failed. Output holds what
// an external program wrote to stderr, if anything.
type StageError struct {
	Stage  string
	Output string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageError wraps err with the stage name, picking up program output from
// a CommandError.
func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	se := &StageError{Stage: stage, Err: err}
	var ce *CommandError
	if errors.As(err, &ce) {
		se.Output = ce.Output
	}
	return se
}
