package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jorge-barreto/pipecraft/internal/catalog"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Name) == "" && cfg.Template == "" {
		return fmt.Errorf("config: 'name' is required")
	}

	var base []pipeline.Stage
	if cfg.Template != "" {
		t, err := catalog.Get(cfg.Template)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		base = t.Stages
	} else {
		if len(cfg.Stages) == 0 {
			return fmt.Errorf("config: at least one stage is required")
		}
		if cfg.Platform == "" {
			cfg.Platform = string(pipeline.GitHubActions)
		}
		if cfg.DeploymentTarget == "" {
			cfg.DeploymentTarget = string(pipeline.TargetCustom)
		}
	}

	if cfg.Platform != "" && !pipeline.Platform(cfg.Platform).Valid() {
		return fmt.Errorf("config: unknown platform %q (must be github-actions, jenkins, gitlab-ci, or azure-devops)", cfg.Platform)
	}
	if cfg.DeploymentTarget != "" && !pipeline.DeploymentTarget(cfg.DeploymentTarget).Valid() {
		return fmt.Errorf("config: unknown deployment-target %q (must be aws, azure, gcp, or custom)", cfg.DeploymentTarget)
	}

	seen := make(map[string]bool)
	for _, s := range base {
		seen[s.ID] = true
	}
	for i := range cfg.Stages {
		s := &cfg.Stages[i]

		if s.ID == "" {
			return fmt.Errorf("config: stage %d: 'id' is required", i+1)
		}
		if !pipeline.ValidStageID(s.ID) {
			return fmt.Errorf("config: stage %q: id must match [A-Za-z_][A-Za-z0-9_-]*", s.ID)
		}
		if seen[s.ID] {
			if cfg.Template != "" {
				return fmt.Errorf("config: duplicate stage id %q (already defined by template %q)", s.ID, cfg.Template)
			}
			return fmt.Errorf("config: duplicate stage id %q", s.ID)
		}
		seen[s.ID] = true

		if s.Name == "" {
			s.Name = s.ID
		}
		if s.Type == "" {
			s.Type = string(pipeline.StageCustom)
		}
		if !pipeline.StageType(s.Type).Valid() {
			return fmt.Errorf("config: stage %q: unknown type %q (must be build, test, deploy, notify, or custom)", s.ID, s.Type)
		}
		if len(commands(s.Commands)) == 0 {
			return fmt.Errorf("config: stage %q: 'commands' must contain at least one command", s.ID)
		}
		for _, dep := range s.DependsOn {
			if !seen[dep] && cfg.StageIndex(dep) < 0 {
				return fmt.Errorf("config: stage %q: depends-on %q does not name a stage", s.ID, dep)
			}
		}
		for k := range s.Environment {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("config: stage %q: environment keys must be non-empty", s.ID)
			}
		}
	}

	p, err := cfg.Pipeline("", time.Time{})
	if err != nil {
		return err
	}
	if err := pipeline.Validate(p); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
