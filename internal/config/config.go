package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/pipecraft/internal/catalog"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

// Default file names searched for by FindFile, in order.
const (
	DefaultYAMLFile = "pipecraft.yaml"
	DefaultHCLFile  = "pipecraft.hcl"
)

type Stage struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name,omitempty"`
	Type        string            `yaml:"type,omitempty"`
	Commands    []string          `yaml:"commands"`
	DependsOn   []string          `yaml:"depends-on,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Artifacts   []string          `yaml:"artifacts,omitempty"`
}

// Config is a pipeline definition as authored on disk.
type Config struct {
	Name             string  `yaml:"name,omitempty"`
	Description      string  `yaml:"description,omitempty"`
	Platform         string  `yaml:"platform,omitempty"`
	DeploymentTarget string  `yaml:"deployment-target,omitempty"`
	Language         string  `yaml:"language,omitempty"`
	Template         string  `yaml:"template,omitempty"`
	Stages           []Stage `yaml:"stages"`
}

// Load reads a pipeline file and returns a validated Config. Files ending in
// .hcl are decoded as HCL, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		cfg, err = decodeHCL(path, data)
	case ".yaml", ".yml", "":
		cfg = &Config{}
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config: %s: unsupported file extension (want .yaml, .yml or .hcl)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindFile walks up from dir looking for pipecraft.yaml or pipecraft.hcl and
// returns the first one found.
func FindFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for d := abs; ; d = filepath.Dir(d) {
		for _, name := range []string{DefaultYAMLFile, DefaultHCLFile} {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	return "", fmt.Errorf("no %s or %s found in %s or any parent directory — run 'pipecraft init' to create one", DefaultYAMLFile, DefaultHCLFile, abs)
}

// StageIndex returns the index of the stage with the given ID, or -1 if not found.
func (c *Config) StageIndex(id string) int {
	for i, s := range c.Stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Pipeline builds the pipeline the file describes. When a template is named,
// its stages come first and the file's non-empty fields override its tags.
func (c *Config) Pipeline(id string, now time.Time) (*pipeline.Pipeline, error) {
	var p *pipeline.Pipeline
	if c.Template != "" {
		t, err := catalog.Get(c.Template)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		p = catalog.Clone(t, id, now)
	} else {
		p = &pipeline.Pipeline{
			ID:               id,
			Stages:           []pipeline.Stage{},
			Platform:         pipeline.GitHubActions,
			DeploymentTarget: pipeline.TargetCustom,
			Created:          now,
			Modified:         now,
		}
	}

	if c.Name != "" {
		p.Name = c.Name
	}
	if c.Description != "" {
		p.Description = c.Description
	}
	if c.Platform != "" {
		p.Platform = pipeline.Platform(c.Platform)
	}
	if c.DeploymentTarget != "" {
		p.DeploymentTarget = pipeline.DeploymentTarget(c.DeploymentTarget)
	}
	if c.Language != "" {
		p.Language = pipeline.Language(c.Language)
	}
	for _, s := range c.Stages {
		p.Stages = append(p.Stages, s.toStage())
	}
	return p, nil
}

func (s Stage) toStage() pipeline.Stage {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	typ := pipeline.StageType(s.Type)
	if typ == "" {
		typ = pipeline.StageCustom
	}
	st := pipeline.Stage{
		ID:           s.ID,
		Name:         name,
		Type:         typ,
		Commands:     commands(s.Commands),
		Dependencies: s.DependsOn,
		Environment:  s.Environment,
		Artifacts:    s.Artifacts,
	}
	return st.Clone()
}

// commands splits multi-line entries so a heredoc or YAML block string can
// hold a whole "run: |" script.
func commands(entries []string) []pipeline.Command {
	var lines []string
	for _, e := range entries {
		lines = append(lines, strings.Split(strings.TrimRight(e, "\n"), "\n")...)
	}
	return pipeline.ParseCommands(lines)
}

// FromPipeline converts a pipeline back to its file form.
func FromPipeline(p *pipeline.Pipeline) *Config {
	cfg := &Config{
		Name:             p.Name,
		Description:      p.Description,
		Platform:         string(p.Platform),
		DeploymentTarget: string(p.DeploymentTarget),
		Language:         string(p.Language),
		Stages:           make([]Stage, len(p.Stages)),
	}
	for i, s := range p.Stages {
		cfg.Stages[i] = Stage{
			ID:          s.ID,
			Name:        s.Name,
			Type:        string(s.Type),
			Commands:    pipeline.Lines(s.Commands),
			DependsOn:   s.Dependencies,
			Environment: s.Environment,
			Artifacts:   s.Artifacts,
		}
	}
	return cfg
}
