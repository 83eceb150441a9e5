package generate

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

func stage(id, name string, deps []string, lines ...string) pipeline.Stage {
	return pipeline.Stage{
		ID:           id,
		Name:         name,
		Type:         pipeline.StageCustom,
		Commands:     pipeline.ParseCommands(lines),
		Dependencies: deps,
	}
}

func ghPipeline(stages ...pipeline.Stage) *pipeline.Pipeline {
	return &pipeline.Pipeline{Name: "demo", Platform: pipeline.GitHubActions, Language: pipeline.Go, Stages: stages}
}

// jobOrder returns job keys in the order they appear in the workflow.
func jobOrder(t *testing.T, yml string) []string {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yml), &doc); err != nil {
		t.Fatalf("generated workflow is not valid YAML: %v\n%s", err, yml)
	}
	root := doc.Content[0]
	for i := 0; i < len(root.Content); i += 2 {
		if root.Content[i].Value != "jobs" {
			continue
		}
		jobs := root.Content[i+1]
		var keys []string
		for j := 0; j < len(jobs.Content); j += 2 {
			keys = append(keys, jobs.Content[j].Value)
		}
		return keys
	}
	t.Fatal("no jobs key in workflow")
	return nil
}

func TestGitHubActions_CheckoutThenDeploy(t *testing.T) {
	p := ghPipeline(
		stage("checkout", "checkout", nil, "uses: actions/checkout@v3"),
		stage("deploy", "deploy", []string{"checkout"}, "run: ./deploy.sh"),
	)
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `name: demo

on:
  push:
    branches: [ main ]
  pull_request:
    branches: [ main ]

jobs:
  checkout:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v3
  deploy:
    runs-on: ubuntu-latest
    needs: [checkout]
    steps:
      - name: deploy
        run: ./deploy.sh
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("workflow mismatch (-want +got):\n%s", diff)
	}
}

func TestGitHubActions_DependencyBeforeDependent(t *testing.T) {
	p := ghPipeline(
		stage("b", "B", []string{"a"}, "run: b"),
		stage("a", "A", nil, "run: a"),
		stage("c", "C", nil, "run: c"),
	)
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, jobOrder(t, got)); diff != "" {
		t.Fatalf("job order (-want +got):\n%s", diff)
	}
	if !strings.Contains(got, "  b:\n    runs-on: ubuntu-latest\n    needs: [a]\n") {
		t.Fatalf("b should need exactly a:\n%s", got)
	}
}

func TestGitHubActions_NoDependenciesKeepsInputOrder(t *testing.T) {
	p := ghPipeline(
		stage("lint", "Lint", nil, "run: make lint"),
		stage("build", "Build", nil, "run: make"),
		stage("test", "Test", nil, "run: make test"),
	)
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"lint", "build", "test"}, jobOrder(t, got)); diff != "" {
		t.Fatalf("job order (-want +got):\n%s", diff)
	}
	if strings.Contains(got, "needs:") {
		t.Fatalf("unexpected needs: line:\n%s", got)
	}
}

func TestGitHubActions_NeedsNotTransitive(t *testing.T) {
	p := ghPipeline(
		stage("a", "A", nil, "run: a"),
		stage("b", "B", []string{"a"}, "run: b"),
		stage("c", "C", []string{"b"}, "run: c"),
	)
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "  c:\n    runs-on: ubuntu-latest\n    needs: [b]\n") {
		t.Fatalf("c should need only b:\n%s", got)
	}
}

func TestGitHubActions_RepeatedDependencyListedOnce(t *testing.T) {
	p := ghPipeline(
		stage("a", "A", nil, "run: a"),
		stage("b", "B", nil, "run: b"),
		stage("c", "C", []string{"a", "b", "a"}, "run: c"),
	)
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "    needs: [a, b]\n") {
		t.Fatalf("got:\n%s", got)
	}
}

func TestGitHubActions_NamesNeedingQuotes(t *testing.T) {
	names := []string{"Build: web", "- deploy", "#1 build", "true", "123", "a\nb", "it's [x]"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			p := ghPipeline(stage("build", name, nil, "run: make"))
			p.Name = name
			got, err := GitHubActions(p)
			if err != nil {
				t.Fatal(err)
			}
			var wf struct {
				Name string `yaml:"name"`
				Jobs map[string]struct {
					Steps []struct {
						Name string `yaml:"name"`
						Run  string `yaml:"run"`
					} `yaml:"steps"`
				} `yaml:"jobs"`
			}
			if err := yaml.Unmarshal([]byte(got), &wf); err != nil {
				t.Fatalf("workflow does not parse: %v\n%s", err, got)
			}
			if wf.Name != name {
				t.Errorf("workflow name = %q, want %q", wf.Name, name)
			}
			steps := wf.Jobs["build"].Steps
			if len(steps) != 1 || steps[0].Name != name || steps[0].Run != "make" {
				t.Errorf("steps = %+v", steps)
			}
		})
	}
}

func TestGitHubActions_PlainNamesStayUnquoted(t *testing.T) {
	got, err := GitHubActions(ghPipeline(stage("test", "Run Tests", nil, "run: make test")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "name: demo\n") || !strings.Contains(got, "      - name: Run Tests\n") {
		t.Fatalf("got:\n%s", got)
	}
}

func TestGitHubActions_MultipleRunLinesShareStageTitle(t *testing.T) {
	p := ghPipeline(stage("test", "Run Tests", nil, "run: go vet ./...", "run: go test ./..."))
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "    steps:\n" +
		"      - name: Run Tests\n" +
		"        run: go vet ./...\n" +
		"      - name: Run Tests\n" +
		"        run: go test ./...\n"
	if !strings.HasSuffix(got, want) {
		t.Fatalf("got:\n%s", got)
	}
	if n := strings.Count(got, "- name: Run Tests"); n != 2 {
		t.Fatalf("expected 2 steps, got %d", n)
	}
}

func TestGitHubActions_ActionWithParameters(t *testing.T) {
	p := ghPipeline(stage("setup", "Setup Node.js", nil,
		"uses: actions/setup-node@v3",
		"with:",
		"  node-version: 16",
		"  cache: npm",
	))
	got, err := GitHubActions(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "      - uses: actions/setup-node@v3\n" +
		"        with:\n" +
		"          node-version: 16\n" +
		"          cache: npm\n"
	if !strings.HasSuffix(got, want) {
		t.Fatalf("got:\n%s", got)
	}
	jobOrder(t, got)
}

func TestGitHubActions_EnvironmentAndArtifacts(t *testing.T) {
	s := stage("build", "Build", nil, "run: make")
	s.Environment = map[string]string{"GOOS": "linux", "CGO_ENABLED": "0"}
	s.Artifacts = []string{"bin/app", "coverage.out"}
	got, err := GitHubActions(ghPipeline(s))
	if err != nil {
		t.Fatal(err)
	}
	want := `  build:
    runs-on: ubuntu-latest
    env:
      CGO_ENABLED: "0"
      GOOS: "linux"
    steps:
      - name: Build
        run: make
      - name: Upload artifacts
        uses: actions/upload-artifact@v3
        with:
          name: build
          path: |
            bin/app
            coverage.out
`
	if !strings.HasSuffix(got, want) {
		t.Fatalf("got:\n%s", got)
	}
	jobOrder(t, got)
}

func TestGitHubActions_CycleIsReported(t *testing.T) {
	p := ghPipeline(
		stage("a", "A", []string{"b"}, "run: a"),
		stage("b", "B", []string{"a"}, "run: b"),
	)
	_, err := GitHubActions(p)
	var cyclic *pipeline.CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected CyclicDependencyError, got %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, cyclic.Stages); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestGitHubActions_DanglingDependencyIsReported(t *testing.T) {
	p := ghPipeline(stage("deploy", "Deploy", []string{"build"}, "run: ./deploy.sh"))
	_, err := GitHubActions(p)
	var unknown *pipeline.UnknownDependencyError
	if !errors.As(err, &unknown) || unknown.Dependency != "build" {
		t.Fatalf("expected UnknownDependencyError for build, got %v", err)
	}
}
