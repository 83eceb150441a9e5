package generate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

// Jenkinsfile renders a declarative Jenkins pipeline with one stage block per
// stage, in declared order. Action lines and their parameters have no Jenkins
// equivalent and are skipped.
func Jenkinsfile(p *pipeline.Pipeline) string {
	var b strings.Builder
	b.WriteString("pipeline {\n")
	b.WriteString("  agent any\n\n")
	b.WriteString("  stages {\n")
	for _, s := range p.Stages {
		writeJenkinsStage(&b, s)
	}
	b.WriteString("  }\n")
	b.WriteString("}\n")
	return b.String()
}

func writeJenkinsStage(b *strings.Builder, s pipeline.Stage) {
	fmt.Fprintf(b, "    stage('%s') {\n", groovySingle(s.Name))
	if len(s.Environment) > 0 {
		b.WriteString("      environment {\n")
		for _, k := range slices.Sorted(maps.Keys(s.Environment)) {
			fmt.Fprintf(b, "        %s = '%s'\n", k, groovySingle(s.Environment[k]))
		}
		b.WriteString("      }\n")
	}

	b.WriteString("      steps {\n")
	for _, step := range shellSteps(s.Commands) {
		if len(step) == 1 {
			fmt.Fprintf(b, "        sh \"%s\"\n", groovyDouble(step[0]))
			continue
		}
		b.WriteString("        sh '''\n")
		for _, line := range step {
			fmt.Fprintf(b, "          %s\n", strings.ReplaceAll(line, `\`, `\\`))
		}
		b.WriteString("        '''\n")
	}
	b.WriteString("      }\n")

	if len(s.Artifacts) > 0 {
		b.WriteString("      post {\n")
		b.WriteString("        success {\n")
		fmt.Fprintf(b, "          archiveArtifacts artifacts: '%s'\n", groovySingle(strings.Join(s.Artifacts, ", ")))
		b.WriteString("        }\n")
		b.WriteString("      }\n")
	}
	b.WriteString("    }\n")
}

// shellSteps groups commands into shell steps. A single-element step is one
// command line; a longer one is the body of a "run: |" block scalar.
func shellSteps(cmds []pipeline.Command) [][]string {
	const (
		plain = iota
		inAction
		inBlock
	)
	var (
		steps [][]string
		block []string
		mode  = plain
	)
	flush := func() {
		if mode == inBlock && len(block) > 0 {
			steps = append(steps, dedent(block))
		}
		block = nil
	}

	for _, c := range cmds {
		switch c.Kind {
		case pipeline.ActionReference, pipeline.ActionParameter:
			flush()
			mode = inAction
		case pipeline.ShellCommand:
			flush()
			if isBlockScalar(c.Value) {
				mode = inBlock
				continue
			}
			mode = plain
			steps = append(steps, []string{c.Value})
		case pipeline.RawLine:
			switch mode {
			case inAction:
				// parameter of the preceding action
			case inBlock:
				block = append(block, c.Value)
			default:
				steps = append(steps, []string{c.Value})
			}
		}
	}
	flush()
	return steps
}

func isBlockScalar(v string) bool {
	return strings.HasPrefix(v, "|") || strings.HasPrefix(v, ">")
}

// dedent strips the indentation common to all non-blank lines.
func dedent(lines []string) []string {
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case strings.TrimSpace(l) == "":
			out[i] = ""
		case common > 0:
			out[i] = l[common:]
		default:
			out[i] = l
		}
	}
	return out
}

// groovyDouble escapes s for a double-quoted Groovy string. $ is escaped so
// the shell, not Groovy, expands variables.
func groovyDouble(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, `$`, `\$`)
}

func groovySingle(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
