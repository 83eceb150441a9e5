package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckStage(t *testing.T) {
	if err := CheckStage(Stage{Name: "x", Commands: []Command{Run("x")}}); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("got %v", err)
	}
	if err := CheckStage(Stage{ID: "a", Name: " ", Commands: []Command{Run("x")}}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("got %v", err)
	}
	if err := CheckStage(Stage{ID: "a", Name: "A"}); !errors.Is(err, ErrNoCommands) {
		t.Fatalf("got %v", err)
	}
	err := CheckStage(Stage{ID: "a", Name: "A", Type: "lint", Commands: []Command{Run("x")}})
	if err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Fatalf("got %v", err)
	}
	if err := CheckStage(stage("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckStage_ID(t *testing.T) {
	for _, id := range []string{"build", "_x", "deploy-prod", "stage-0f9c"} {
		if err := CheckStage(stage(id)); err != nil {
			t.Errorf("%q: unexpected error: %v", id, err)
		}
	}
	for _, id := range []string{"0f9c1d2e", "a:b", "a]", "two words", "-x"} {
		if err := CheckStage(stage(id)); !errors.Is(err, ErrInvalidID) {
			t.Errorf("%q: got %v, want ErrInvalidID", id, err)
		}
	}
}

func TestCheckDependencies(t *testing.T) {
	existing := []Stage{stage("a"), stage("b")}
	if err := CheckDependencies(existing, stage("c", "a", "b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var unknown *UnknownDependencyError
	if err := CheckDependencies(existing, stage("c", "z")); !errors.As(err, &unknown) || unknown.Dependency != "z" {
		t.Fatalf("got %v", err)
	}

	var cyclic *CyclicDependencyError
	if err := CheckDependencies(existing, stage("a", "a")); !errors.As(err, &cyclic) {
		t.Fatalf("got %v", err)
	}
}

func TestValidate(t *testing.T) {
	p := &Pipeline{Name: "ci", Stages: []Stage{stage("a"), stage("b", "a")}}
	if err := Validate(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Name = ""
	if err := Validate(p); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("got %v", err)
	}

	p.Name = "ci"
	p.Stages = append(p.Stages, stage("c", "missing"))
	var unknown *UnknownDependencyError
	if err := Validate(p); !errors.As(err, &unknown) {
		t.Fatalf("got %v", err)
	}
}

func TestValidTags(t *testing.T) {
	if !StageDeploy.Valid() || StageType("lint").Valid() {
		t.Fatal("stage type validity wrong")
	}
	if !Jenkins.Valid() || Platform("circleci").Valid() {
		t.Fatal("platform validity wrong")
	}
	if !TargetGCP.Valid() || DeploymentTarget("heroku").Valid() {
		t.Fatal("target validity wrong")
	}
}

func TestPipelineClone_IsIndependent(t *testing.T) {
	p := &Pipeline{Name: "ci", Stages: []Stage{{
		ID: "a", Name: "A", Commands: []Command{Run("x")},
		Dependencies: []string{"b"},
		Environment:  map[string]string{"K": "v"},
	}}}
	cp := p.Clone()
	cp.Stages[0].Commands[0] = Run("y")
	cp.Stages[0].Dependencies[0] = "c"
	cp.Stages[0].Environment["K"] = "w"
	if p.Stages[0].Commands[0].Value != "x" || p.Stages[0].Dependencies[0] != "b" || p.Stages[0].Environment["K"] != "v" {
		t.Fatalf("clone shares state with original: %+v", p.Stages[0])
	}
}
