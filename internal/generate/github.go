package generate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

const workflowTriggers = `on:
  push:
    branches: [ main ]
  pull_request:
    branches: [ main ]

`

// GitHubActions renders the pipeline as a GitHub Actions workflow with one
// job per stage. Jobs appear in dependency order and each job's needs: list
// holds exactly the dependencies declared on that stage.
func GitHubActions(p *pipeline.Pipeline) (string, error) {
	ordered, err := pipeline.Linearize(p.Stages)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n\n", scalar(p.Name))
	b.WriteString(workflowTriggers)
	b.WriteString("jobs:\n")
	for _, s := range ordered {
		writeJob(&b, s)
	}
	return b.String(), nil
}

func writeJob(b *strings.Builder, s pipeline.Stage) {
	fmt.Fprintf(b, "  %s:\n", s.ID)
	b.WriteString("    runs-on: ubuntu-latest\n")
	if len(s.Dependencies) > 0 {
		fmt.Fprintf(b, "    needs: [%s]\n", strings.Join(uniq(s.Dependencies), ", "))
	}
	if len(s.Environment) > 0 {
		b.WriteString("    env:\n")
		for _, k := range slices.Sorted(maps.Keys(s.Environment)) {
			fmt.Fprintf(b, "      %s: %q\n", k, s.Environment[k])
		}
	}

	b.WriteString("    steps:\n")
	for _, c := range s.Commands {
		switch c.Kind {
		case pipeline.ActionReference:
			fmt.Fprintf(b, "      - %s\n", c)
		case pipeline.ShellCommand:
			// Every run: line is its own step, titled after the stage.
			fmt.Fprintf(b, "      - name: %s\n", scalar(s.Name))
			fmt.Fprintf(b, "        %s\n", c)
		default:
			fmt.Fprintf(b, "        %s\n", c)
		}
	}

	if len(s.Artifacts) > 0 {
		b.WriteString("      - name: Upload artifacts\n")
		b.WriteString("        uses: actions/upload-artifact@v3\n")
		b.WriteString("        with:\n")
		fmt.Fprintf(b, "          name: %s\n", s.ID)
		b.WriteString("          path: |\n")
		for _, a := range s.Artifacts {
			fmt.Fprintf(b, "            %s\n", a)
		}
	}
}

// scalar renders s as a YAML scalar, quoting it only when the plain form
// would parse as something else.
func scalar(s string) string {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.ContainsAny(s, "\r\n") {
		n.Style = yaml.DoubleQuotedStyle
	}
	out, err := yaml.Marshal(n)
	v := strings.TrimSuffix(string(out), "\n")
	if err != nil || strings.Contains(v, "\n") {
		return fmt.Sprintf("%q", s)
	}
	return v
}

// uniq drops repeated IDs, keeping first-seen order.
func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
