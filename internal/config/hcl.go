package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclConfig mirrors Config for HCL files, where stages are labelled blocks:
//
//	stage "build" {
//	  commands   = ["run: make"]
//	  depends_on = ["checkout"]
//	}
type hclConfig struct {
	Name             string      `hcl:"name,optional"`
	Description      string      `hcl:"description,optional"`
	Platform         string      `hcl:"platform,optional"`
	DeploymentTarget string      `hcl:"deployment_target,optional"`
	Language         string      `hcl:"language,optional"`
	Template         string      `hcl:"template,optional"`
	Stages           []*hclStage `hcl:"stage,block"`
}

type hclStage struct {
	ID          string            `hcl:"id,label"`
	Name        string            `hcl:"name,optional"`
	Type        string            `hcl:"type,optional"`
	Commands    []string          `hcl:"commands,optional"`
	DependsOn   []string          `hcl:"depends_on,optional"`
	Environment map[string]string `hcl:"environment,optional"`
	Artifacts   []string          `hcl:"artifacts,optional"`
}

func decodeHCL(path string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var parsed hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}

	cfg := &Config{
		Name:             parsed.Name,
		Description:      parsed.Description,
		Platform:         parsed.Platform,
		DeploymentTarget: parsed.DeploymentTarget,
		Language:         parsed.Language,
		Template:         parsed.Template,
		Stages:           make([]Stage, 0, len(parsed.Stages)),
	}
	for _, s := range parsed.Stages {
		cfg.Stages = append(cfg.Stages, Stage{
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Type,
			Commands:    s.Commands,
			DependsOn:   s.DependsOn,
			Environment: s.Environment,
			Artifacts:   s.Artifacts,
		})
	}
	return cfg, nil
}
