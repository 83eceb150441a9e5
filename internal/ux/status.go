package ux

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

// RenderPipeline writes a summary of p: its tags, every stage in declared
// order, and the order jobs will be generated in. A dependency problem is
// shown in place of the job order.
func RenderPipeline(w io.Writer, p *pipeline.Pipeline) {
	fmt.Fprintf(w, "%sPipeline:%s %s\n", Bold, Reset, p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, "%s%s%s\n", Dim, p.Description, Reset)
	}
	fmt.Fprintf(w, "%sPlatform:%s %s  %sTarget:%s %s  %sLanguage:%s %s\n",
		Bold, Reset, p.Platform, Bold, Reset, p.DeploymentTarget, Bold, Reset, orDash(string(p.Language)))

	fmt.Fprintf(w, "\n%sStages:%s\n", Bold, Reset)
	if len(p.Stages) == 0 {
		fmt.Fprintf(w, "  %s(none)%s\n", Dim, Reset)
	}
	for i, s := range p.Stages {
		fmt.Fprintf(w, "  %s%d%s  %-24s %s(%s, %d commands)%s",
			Dim, i+1, Reset, s.Name, Dim, s.Type, len(s.Commands), Reset)
		if len(s.Dependencies) > 0 {
			fmt.Fprintf(w, "  %s← %s%s", Cyan, strings.Join(s.Dependencies, ", "), Reset)
		}
		fmt.Fprintln(w)
	}

	ordered, err := pipeline.Linearize(p.Stages)
	if err != nil {
		fmt.Fprintf(w, "\n%s✗ %v%s\n", Red, err, Reset)
		return
	}
	if len(ordered) > 0 {
		ids := make([]string, len(ordered))
		for i, s := range ordered {
			ids[i] = s.ID
		}
		fmt.Fprintf(w, "\n%sJob order:%s %s\n", Bold, Reset, strings.Join(ids, " → "))
	}
}

// RenderTemplates writes the template catalog as a table.
func RenderTemplates(w io.Writer, templates []pipeline.Template) {
	width := 0
	for _, t := range templates {
		width = max(width, len(t.ID))
	}
	for _, t := range templates {
		fmt.Fprintf(w, "  %s%-*s%s  %s %s(%s, %s, %s)%s\n",
			Cyan, width, t.ID, Reset, t.Name, Dim, t.Platform, t.DeploymentTarget, t.Language, Reset)
	}
}

// RenderTemplate writes one template's details and stage list.
func RenderTemplate(w io.Writer, t pipeline.Template) {
	fmt.Fprintf(w, "%s%s%s (%s)\n%s\n\n", Bold, t.Name, Reset, t.ID, t.Description)
	for i, s := range t.Stages {
		fmt.Fprintf(w, "  %s%d%s  %s %s(%s)%s\n", Dim, i+1, Reset, s.Name, Dim, s.Type, Reset)
		for _, line := range pipeline.Lines(s.Commands) {
			fmt.Fprintf(w, "       %s\n", line)
		}
	}
	if t.Dockerfile != "" {
		fmt.Fprintf(w, "\n%sDockerfile:%s\n", Bold, Reset)
		for line := range strings.Lines(t.Dockerfile) {
			fmt.Fprintf(w, "  %s", line)
		}
		if !strings.HasSuffix(t.Dockerfile, "\n") {
			fmt.Fprintln(w)
		}
	}
}

// RenderLanguages writes the languages with a dedicated Dockerfile.
func RenderLanguages(w io.Writer, langs []pipeline.Language) {
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = string(l)
	}
	slices.Sort(names)
	fmt.Fprintf(w, "%sLanguages:%s %s\n", Bold, Reset, strings.Join(names, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
