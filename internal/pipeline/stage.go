package pipeline

import (
	"fmt"

	"github.com/listenupapp/bookclusters/internal/errors"
)

// Stage names one guarded step of a run.
type Stage string

// Pipeline stages, in run order.
const (
	StageLoad      Stage = "load"
	StageEngineer  Stage = "engineer"
	StageCluster   Stage = "validate+cluster"
	StageProfile   Stage = "profile"
	StageVisualize Stage = "visualize"
	StageRecommend Stage = "recommend"
)

// dependencies lists the stages each stage needs to have succeeded.
//
//nolint:gochecknoglobals // Static stage graph
var dependencies = map[Stage][]Stage{
	StageLoad:      nil,
	StageEngineer:  {StageLoad},
	StageCluster:   {StageEngineer},
	StageProfile:   {StageCluster},
	StageVisualize: {StageProfile},
	StageRecommend: {StageEngineer},
}

// StageError records which stage failed and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExitCode maps the underlying error to a process exit code.
func (e *StageError) ExitCode() int {
	return errors.CodeOf(e.Err).ExitCode()
}
