// Package doctor diagnoses pipelines and failed simulation runs.
package doctor

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/jorge-barreto/pipecraft/internal/generate"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
	"github.com/jorge-barreto/pipecraft/internal/simulate"
	"github.com/jorge-barreto/pipecraft/internal/ux"
)

const maxLogLines = 20

var commitSHA = regexp.MustCompile(`^[0-9a-f]{40}$`)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one observation about a pipeline. Stage is empty for findings
// about the pipeline as a whole.
type Finding struct {
	Severity Severity `json:"severity"`
	Stage    string   `json:"stage,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Stage == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: stage %s: %s", f.Severity, f.Stage, f.Message)
}

// Check inspects p for problems that would make its generated files wrong or
// surprising. Findings are ordered pipeline-wide first, then by stage.
func Check(p *pipeline.Pipeline) []Finding {
	var out []Finding

	if _, err := pipeline.Linearize(p.Stages); err != nil {
		out = append(out, Finding{Severity: SeverityError, Message: err.Error()})
	}
	if len(p.Stages) == 0 {
		out = append(out, Finding{Severity: SeverityWarning, Message: "pipeline has no stages"})
	}

	switch p.Platform {
	case pipeline.GitLabCI, pipeline.AzureDevOps:
		out = append(out, Finding{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no generator for platform %s; only the Dockerfile is produced", p.Platform),
		})
	}
	if generate.Dockerfile(p.Language) == generate.DockerfilePlaceholder {
		msg := "no language set; the Dockerfile will be a placeholder"
		if p.Language != "" {
			msg = fmt.Sprintf("no Dockerfile for language %q; the Dockerfile will be a placeholder", p.Language)
		}
		out = append(out, Finding{Severity: SeverityWarning, Message: msg})
	}

	for _, s := range p.Stages {
		out = append(out, checkStage(p, s)...)
	}
	return out
}

func checkStage(p *pipeline.Pipeline, s pipeline.Stage) []Finding {
	var out []Finding
	actions, runs := 0, 0
	for _, c := range s.Commands {
		switch c.Kind {
		case pipeline.ActionReference:
			actions++
		case pipeline.ShellCommand:
			runs++
		}
	}

	if p.Platform == pipeline.Jenkins && actions > 0 {
		out = append(out, Finding{
			Severity: SeverityWarning,
			Stage:    s.ID,
			Message:  fmt.Sprintf("%d 'uses:' step(s) have no Jenkins equivalent and are left out of the Jenkinsfile", actions),
		})
	}
	if p.Platform == pipeline.GitHubActions {
		for _, c := range s.Commands {
			if c.Kind == pipeline.ActionReference {
				if f, ok := checkActionRef(c.Value); !ok {
					f.Stage = s.ID
					out = append(out, f)
				}
			}
		}
	}
	if p.Platform == pipeline.GitHubActions && runs > 1 {
		out = append(out, Finding{
			Severity: SeverityInfo,
			Stage:    s.ID,
			Message:  fmt.Sprintf("%d run steps all share the title %q", runs, s.Name),
		})
	}
	for _, dep := range redundantDeps(p.Stages, s) {
		out = append(out, Finding{
			Severity: SeverityInfo,
			Stage:    s.ID,
			Message:  fmt.Sprintf("dependency %q is already implied by another dependency", dep),
		})
	}
	return out
}

// checkActionRef reports a "uses:" reference that is not pinned to a release
// tag or commit. Local and docker:// actions are not versioned.
func checkActionRef(ref string) (Finding, bool) {
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "docker://") {
		return Finding{}, true
	}
	name, version, found := strings.Cut(ref, "@")
	if !found || version == "" {
		return Finding{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("action %q is not pinned to a version", name),
		}, false
	}
	if commitSHA.MatchString(version) {
		return Finding{}, true
	}
	if _, err := semver.NewVersion(version); err != nil {
		return Finding{
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("action %q follows %q, which is not a release tag", name, version),
		}, false
	}
	return Finding{}, true
}

// redundantDeps returns the dependencies of s that are reachable through one
// of its other dependencies.
func redundantDeps(stages []pipeline.Stage, s pipeline.Stage) []string {
	deps := make(map[string][]string, len(stages))
	for _, st := range stages {
		deps[st.ID] = st.Dependencies
	}

	var out []string
	for _, d := range s.Dependencies {
		for _, other := range s.Dependencies {
			if other != d && reaches(deps, other, d) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func reaches(deps map[string][]string, from, to string) bool {
	seen := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, d := range deps[id] {
			if d == to {
				return true
			}
			stack = append(stack, d)
		}
	}
	return false
}

// Print writes findings to w and returns an error if any of them is an error.
func Print(w io.Writer, findings []Finding) error {
	if len(findings) == 0 {
		fmt.Fprintf(w, "%s✓ No problems found%s\n", ux.Green, ux.Reset)
		return nil
	}
	errs := 0
	for _, f := range findings {
		colour := ux.Dim
		switch f.Severity {
		case SeverityError:
			colour = ux.Red
			errs++
		case SeverityWarning:
			colour = ux.Yellow
		}
		fmt.Fprintf(w, "  %s%s%s\n", colour, f, ux.Reset)
	}
	if errs > 0 {
		return fmt.Errorf("%d error(s) found", errs)
	}
	return nil
}

// Diagnose explains a finished simulation run: the step it stopped at and the
// tail of that step's log.
func Diagnose(w io.Writer, run *simulate.Run) {
	if run.Status != simulate.StatusFailed && run.Status != simulate.StatusInterrupted {
		fmt.Fprintln(w, "No failed run to diagnose.")
		return
	}

	idx := stoppedAt(run)
	if idx < 0 {
		fmt.Fprintf(w, "Run %s is %s but no step was reached.\n", run.ID, run.Status)
		return
	}
	step := run.Steps[idx]

	fmt.Fprintf(w, "\n%s%s══ Doctor: run %s %s at step %d/%d (%s) ══%s\n\n",
		ux.Bold, ux.Cyan, run.ID, run.Status, idx+1, len(run.Steps), step.Name, ux.Reset)
	fmt.Fprintln(w, gatherLog(step))
	fmt.Fprintln(w)

	if run.Status == simulate.StatusInterrupted {
		fmt.Fprintln(w, "The run was stopped before this step finished. Run 'pipecraft simulate' again to replay it.")
		return
	}
	fmt.Fprintf(w, "Step %q failed after %ds. Outcomes are random; run 'pipecraft simulate --seed N' for a repeatable run.\n",
		step.Name, step.Duration)
}

// stoppedAt returns the index of the failed step, or for an interrupted run
// the last step that produced output.
func stoppedAt(run *simulate.Run) int {
	last := -1
	for i, s := range run.Steps {
		if s.Status == simulate.StepFailure {
			return i
		}
		if len(s.Log) > 0 {
			last = i
		}
	}
	return last
}

func gatherLog(step simulate.Step) string {
	if len(step.Log) == 0 {
		return "(no log output)"
	}
	lines := step.Log
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
		return fmt.Sprintf("... (truncated to last %d lines)\n%s", maxLogLines, strings.Join(lines, "\n"))
	}
	return strings.Join(lines, "\n")
}
