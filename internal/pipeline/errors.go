package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPipeline      = errors.New("no pipeline: create one or load a template first")
	ErrStageNotFound   = errors.New("stage not found")
	ErrIndexOutOfRange = errors.New("stage index out of range")
	ErrEmptyName       = errors.New("name is required")
	ErrEmptyID         = errors.New("stage id is required")
	ErrInvalidID       = errors.New("id must start with a letter or '_' and contain only letters, digits, '_' or '-'")
	ErrNoCommands      = errors.New("at least one command is required")
)

// UnknownDependencyError reports a dependency on a stage ID that is not part
// of the pipeline.
type UnknownDependencyError struct {
	Stage      string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("stage %q depends on unknown stage %q", e.Stage, e.Dependency)
}

// CyclicDependencyError lists the stages that could not be ordered because
// their dependencies form a cycle, or hang off one.
type CyclicDependencyError struct {
	Stages []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle among stages: %s", strings.Join(e.Stages, ", "))
}

type DuplicateStageError struct {
	ID string
}

func (e *DuplicateStageError) Error() string {
	return fmt.Sprintf("duplicate stage id %q", e.ID)
}
