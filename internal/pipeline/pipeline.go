package pipeline

import (
	"maps"
	"slices"
	"time"
)

type StageType string

const (
	StageBuild  StageType = "build"
	StageTest   StageType = "test"
	StageDeploy StageType = "deploy"
	StageNotify StageType = "notify"
	StageCustom StageType = "custom"
)

var stageTypes = []StageType{StageBuild, StageTest, StageDeploy, StageNotify, StageCustom}

// Valid reports whether t is one of the known stage categories.
func (t StageType) Valid() bool {
	return slices.Contains(stageTypes, t)
}

type Platform string

const (
	GitHubActions Platform = "github-actions"
	Jenkins       Platform = "jenkins"
	GitLabCI      Platform = "gitlab-ci"
	AzureDevOps   Platform = "azure-devops"
)

var platforms = []Platform{GitHubActions, Jenkins, GitLabCI, AzureDevOps}

func (p Platform) Valid() bool {
	return slices.Contains(platforms, p)
}

type DeploymentTarget string

const (
	TargetAWS    DeploymentTarget = "aws"
	TargetAzure  DeploymentTarget = "azure"
	TargetGCP    DeploymentTarget = "gcp"
	TargetCustom DeploymentTarget = "custom"
)

var targets = []DeploymentTarget{TargetAWS, TargetAzure, TargetGCP, TargetCustom}

func (d DeploymentTarget) Valid() bool {
	return slices.Contains(targets, d)
}

// Language is an implementation-language tag. Unknown tags are carried
// through unchanged; generators decide how to treat them.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	Java       Language = "java"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Ruby       Language = "ruby"
	PHP        Language = "php"
)

// Stage is one named unit of work in a pipeline.
type Stage struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Type         StageType         `json:"type" yaml:"type"`
	Commands     []Command         `json:"commands" yaml:"commands"`
	Dependencies []string          `json:"dependencies,omitempty" yaml:"depends-on,omitempty"`
	Environment  map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
	Artifacts    []string          `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// Clone returns a deep copy of the stage.
func (s Stage) Clone() Stage {
	cp := s
	cp.Commands = slices.Clone(s.Commands)
	cp.Dependencies = slices.Clone(s.Dependencies)
	cp.Artifacts = slices.Clone(s.Artifacts)
	if s.Environment != nil {
		cp.Environment = maps.Clone(s.Environment)
	}
	return cp
}

// Pipeline is an ordered set of stages plus its target tags. Stage order is
// the default execution order and breaks ties when dependencies allow
// several orderings.
type Pipeline struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Stages           []Stage          `json:"stages"`
	Platform         Platform         `json:"platform"`
	DeploymentTarget DeploymentTarget `json:"deploymentTarget"`
	Language         Language         `json:"language"`
	Created          time.Time        `json:"created"`
	Modified         time.Time        `json:"modified"`
}

// Clone returns a deep copy of the pipeline.
func (p *Pipeline) Clone() *Pipeline {
	cp := *p
	cp.Stages = make([]Stage, len(p.Stages))
	for i, s := range p.Stages {
		cp.Stages[i] = s.Clone()
	}
	return &cp
}

// StageIndex returns the index of the stage with the given ID, or -1 if not found.
func (p *Pipeline) StageIndex(id string) int {
	for i, s := range p.Stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Template is a predefined pipeline that can be cloned as a starting point.
type Template struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Platform         Platform         `json:"platform"`
	DeploymentTarget DeploymentTarget `json:"deploymentTarget"`
	Language         Language         `json:"language"`
	Stages           []Stage          `json:"stages"`
	Dockerfile       string           `json:"dockerfile,omitempty"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	cp := t
	cp.Stages = make([]Stage, len(t.Stages))
	for i, s := range t.Stages {
		cp.Stages[i] = s.Clone()
	}
	return cp
}
