package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// Stage IDs become job keys and needs: entries in generated workflows.
var stageIDRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidStageID reports whether id can be used as a generated job key.
func ValidStageID(id string) bool {
	return stageIDRe.MatchString(id)
}

// CheckStage verifies the fields a stage must carry on its own.
func CheckStage(s Stage) error {
	if s.ID == "" {
		return ErrEmptyID
	}
	if !ValidStageID(s.ID) {
		return fmt.Errorf("stage %q: %w", s.ID, ErrInvalidID)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("stage %q: %w", s.ID, ErrEmptyName)
	}
	if len(s.Commands) == 0 {
		return fmt.Errorf("stage %q: %w", s.ID, ErrNoCommands)
	}
	if s.Type != "" && !s.Type.Valid() {
		return fmt.Errorf("stage %q: unknown type %q (must be build, test, deploy, notify, or custom)", s.ID, s.Type)
	}
	return nil
}

// CheckDependencies verifies that every dependency of s names a stage in
// stages other than s itself. A stage depending on itself is reported as a
// one-stage cycle.
func CheckDependencies(stages []Stage, s Stage) error {
	for _, dep := range s.Dependencies {
		if dep == s.ID {
			return &CyclicDependencyError{Stages: []string{s.ID}}
		}
		found := false
		for _, other := range stages {
			if other.ID == dep {
				found = true
				break
			}
		}
		if !found {
			return &UnknownDependencyError{Stage: s.ID, Dependency: dep}
		}
	}
	return nil
}

// Validate checks the whole pipeline: its name, every stage, unique IDs,
// known dependencies and the absence of cycles.
func Validate(p *Pipeline) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pipeline: %w", ErrEmptyName)
	}
	for _, s := range p.Stages {
		if err := CheckStage(s); err != nil {
			return err
		}
	}
	_, err := Linearize(p.Stages)
	return err
}
