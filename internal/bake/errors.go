package bake

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Detailed errors wrap one of these.
var (
	ErrConfiguration = errors.New("invalid bake configuration")
	ErrMissingTarget = fmt.Errorf("%w: no bake target", ErrConfiguration)
	ErrExecution     = errors.New("bake execution failed")
	ErrWrite         = errors.New("bake write failed")
	ErrCancelled     = errors.New("bake cancelled")
)

// Status is the terminal outcome of a bake.
type Status int

const (
	StatusSuccess Status = iota
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Level is the severity of a report message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	default:
		return "error"
	}
}

// Report is one human-readable diagnostic.
type Report struct {
	Level   Level
	Message string
}

// Result is returned by every bake invocation.
type Result struct {
	Status  Status
	Reports []Report
	Written []string // External files written, in surface order
	Err     error    // First error that decided the status, if any
}

func (r *Result) report(level Level, format string, args ...any) {
	r.Reports = append(r.Reports, Report{Level: level, Message: fmt.Sprintf(format, args...)})
}

// fail records err and sets the status it implies.
func (r *Result) fail(err error) {
	if r.Err == nil {
		r.Err = err
	}
	if errors.Is(err, ErrCancelled) {
		r.Status = StatusCancelled
		r.report(LevelWarning, "Baking cancelled")
		return
	}
	r.Status = StatusFailed
	r.report(LevelError, "%s", err.Error())
}

// checkCancel converts a done context into ErrCancelled.
func checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}
