// Package catalog holds the built-in pipeline templates.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

// ErrUnknownTemplate is wrapped by Get when no template has the requested ID.
var ErrUnknownTemplate = errors.New("unknown template")

// All returns copies of every template in display order.
func All() []pipeline.Template {
	out := make([]pipeline.Template, len(templates))
	for i, t := range templates {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the template with the given ID.
func Get(id string) (pipeline.Template, error) {
	for _, t := range templates {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return pipeline.Template{}, fmt.Errorf("%w %q — run 'pipecraft templates' to list available templates", ErrUnknownTemplate, id)
}

// Clone builds an independent pipeline from a template. The template's stage
// IDs are kept so dependencies keep resolving; the pipeline gets id.
func Clone(t pipeline.Template, id string, now time.Time) *pipeline.Pipeline {
	p := &pipeline.Pipeline{
		ID:               id,
		Name:             t.Name,
		Description:      t.Description,
		Stages:           make([]pipeline.Stage, len(t.Stages)),
		Platform:         t.Platform,
		DeploymentTarget: t.DeploymentTarget,
		Language:         t.Language,
		Created:          now,
		Modified:         now,
	}
	for i, s := range t.Stages {
		p.Stages[i] = s.Clone()
	}
	return p
}

func cmds(lines ...string) []pipeline.Command {
	return pipeline.ParseCommands(lines)
}
