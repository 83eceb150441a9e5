// Package editor holds the pipeline under edit and the mutations a user can
// apply to it. A Session is created per editing context and passed to
// whatever needs it.
package editor

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jorge-barreto/pipecraft/internal/catalog"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

// Session owns at most one pipeline. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	current *pipeline.Pipeline
	now     func() time.Time
	newID   func() string
	// newStageID defaults to a prefixed UUID; a bare one may start with a
	// digit, which is not a valid job key.
	newStageID func() string
}

type Option func(*Session)

// WithClock sets the source of creation and modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDs sets the generator for pipeline and stage identifiers.
func WithIDs(newID func() string) Option {
	return func(s *Session) { s.newID, s.newStageID = newID, newID }
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		now:        time.Now,
		newID:      uuid.NewString,
		newStageID: func() string { return "stage-" + uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StageInput describes a stage to append. The session assigns its ID.
type StageInput struct {
	Name         string             `json:"name"`
	Type         pipeline.StageType `json:"type"`
	Commands     []pipeline.Command `json:"commands"`
	Dependencies []string           `json:"dependencies,omitempty"`
	Environment  map[string]string  `json:"environment,omitempty"`
	Artifacts    []string           `json:"artifacts,omitempty"`
}

// StagePatch holds the fields to change on a stage; nil fields are left as is.
type StagePatch struct {
	Name         *string             `json:"name,omitempty"`
	Type         *pipeline.StageType `json:"type,omitempty"`
	Commands     *[]pipeline.Command `json:"commands,omitempty"`
	Dependencies *[]string           `json:"dependencies,omitempty"`
	Environment  *map[string]string  `json:"environment,omitempty"`
	Artifacts    *[]string           `json:"artifacts,omitempty"`
}

// Create starts a new empty pipeline, replacing any current one.
func (s *Session) Create(name string, platform pipeline.Platform, target pipeline.DeploymentTarget, lang pipeline.Language) (*pipeline.Pipeline, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("pipeline: %w", pipeline.ErrEmptyName)
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("pipeline: unknown platform %q", platform)
	}
	if !target.Valid() {
		return nil, fmt.Errorf("pipeline: unknown deployment target %q", target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.current = &pipeline.Pipeline{
		ID:               s.newID(),
		Name:             name,
		Stages:           []pipeline.Stage{},
		Platform:         platform,
		DeploymentTarget: target,
		Language:         lang,
		Created:          now,
		Modified:         now,
	}
	return s.current.Clone(), nil
}

// Load validates p and makes a copy of it the current pipeline. Missing IDs
// and timestamps are filled in.
func (s *Session) Load(p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	if err := pipeline.Validate(p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p.Clone()
	if cp.ID == "" {
		cp.ID = s.newID()
	}
	now := s.now()
	if cp.Created.IsZero() {
		cp.Created = now
	}
	cp.Modified = now
	s.current = cp
	return cp.Clone(), nil
}

// LoadTemplate replaces the current pipeline with a copy of a catalog template.
func (s *Session) LoadTemplate(id string) (*pipeline.Pipeline, error) {
	t, err := catalog.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = catalog.Clone(t, s.newID(), s.now())
	return s.current.Clone(), nil
}

// Current returns a copy of the pipeline under edit.
func (s *Session) Current() (*pipeline.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, pipeline.ErrNoPipeline
	}
	return s.current.Clone(), nil
}

// AddStage appends a stage with a freshly generated ID. Dependencies must
// name stages already in the pipeline.
func (s *Session) AddStage(in StageInput) (pipeline.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return pipeline.Stage{}, pipeline.ErrNoPipeline
	}

	st := pipeline.Stage{
		ID:           s.newStageID(),
		Name:         in.Name,
		Type:         in.Type,
		Commands:     in.Commands,
		Dependencies: in.Dependencies,
		Environment:  in.Environment,
		Artifacts:    in.Artifacts,
	}.Clone()
	if st.Type == "" {
		st.Type = pipeline.StageCustom
	}
	if err := pipeline.CheckStage(st); err != nil {
		return pipeline.Stage{}, err
	}
	if err := pipeline.CheckDependencies(s.current.Stages, st); err != nil {
		return pipeline.Stage{}, err
	}

	s.current.Stages = append(s.current.Stages, st)
	s.current.Modified = s.now()
	return st.Clone(), nil
}

// UpdateStage merges patch into the stage with the given ID. The change is
// rejected, leaving the pipeline untouched, if the result would be invalid
// or would introduce a dependency cycle.
func (s *Session) UpdateStage(id string, patch StagePatch) (pipeline.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return pipeline.Stage{}, pipeline.ErrNoPipeline
	}
	idx := s.current.StageIndex(id)
	if idx < 0 {
		return pipeline.Stage{}, fmt.Errorf("%w: %q", pipeline.ErrStageNotFound, id)
	}

	st := s.current.Stages[idx].Clone()
	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.Type != nil {
		st.Type = *patch.Type
	}
	if patch.Commands != nil {
		st.Commands = slices.Clone(*patch.Commands)
	}
	if patch.Dependencies != nil {
		st.Dependencies = slices.Clone(*patch.Dependencies)
	}
	if patch.Environment != nil {
		st.Environment = *patch.Environment
		st = st.Clone()
	}
	if patch.Artifacts != nil {
		st.Artifacts = slices.Clone(*patch.Artifacts)
	}

	if err := pipeline.CheckStage(st); err != nil {
		return pipeline.Stage{}, err
	}
	if err := pipeline.CheckDependencies(s.current.Stages, st); err != nil {
		return pipeline.Stage{}, err
	}
	candidate := slices.Clone(s.current.Stages)
	candidate[idx] = st
	if _, err := pipeline.Linearize(candidate); err != nil {
		return pipeline.Stage{}, err
	}

	s.current.Stages = candidate
	s.current.Modified = s.now()
	return st.Clone(), nil
}

// RemoveStage deletes the stage with the given ID and drops it from the
// dependency lists of the remaining stages.
func (s *Session) RemoveStage(id string) (pipeline.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return pipeline.Stage{}, pipeline.ErrNoPipeline
	}
	idx := s.current.StageIndex(id)
	if idx < 0 {
		return pipeline.Stage{}, fmt.Errorf("%w: %q", pipeline.ErrStageNotFound, id)
	}

	removed := s.current.Stages[idx]
	s.current.Stages = slices.Delete(s.current.Stages, idx, idx+1)
	for i := range s.current.Stages {
		deps := s.current.Stages[i].Dependencies
		if slices.Contains(deps, id) {
			s.current.Stages[i].Dependencies = slices.DeleteFunc(slices.Clone(deps), func(d string) bool { return d == id })
		}
	}
	s.current.Modified = s.now()
	return removed, nil
}

// ReorderStages moves the stage at index from so that it ends up at index to.
func (s *Session) ReorderStages(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return pipeline.ErrNoPipeline
	}
	n := len(s.current.Stages)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d with %d stages", pipeline.ErrIndexOutOfRange, from, to, n)
	}

	st := s.current.Stages[from]
	stages := slices.Delete(s.current.Stages, from, from+1)
	s.current.Stages = slices.Insert(stages, to, st)
	s.current.Modified = s.now()
	return nil
}

// Reset discards the current pipeline.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
