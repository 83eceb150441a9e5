package catalog

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/pipecraft/internal/generate"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

func TestAll_ReturnsTemplates(t *testing.T) {
	all := All()
	if len(all) != 4 {
		t.Fatalf("expected 4 templates, got %d", len(all))
	}
	if all[0].ID != "nodejs-aws" {
		t.Errorf("first template = %q, want nodejs-aws", all[0].ID)
	}
}

func TestAll_ReturnsCopies(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	all[0].Stages[0].Name = "changed"
	all[0].Stages[0].Commands[0] = pipeline.Run("rm -rf /")
	all[1] = pipeline.Template{}

	fresh := All()
	if fresh[0].Name == "changed" || fresh[0].Stages[0].Name == "changed" {
		t.Fatalf("All exposed the built-in templates: %+v", fresh[0])
	}
	if fresh[0].Stages[0].Commands[0].Kind != pipeline.ActionReference {
		t.Fatalf("command mutated: %v", fresh[0].Stages[0].Commands[0])
	}
	if fresh[1].ID == "" {
		t.Fatal("slice element overwrite leaked into the catalog")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	got, err := Get("python-gcp")
	if err != nil {
		t.Fatal(err)
	}
	got.Stages[0].Commands[0] = pipeline.Run("x")
	got.Stages[1] = pipeline.Stage{}

	again, err := Get("python-gcp")
	if err != nil {
		t.Fatal(err)
	}
	if again.Stages[0].Commands[0].Kind != pipeline.ActionReference || again.Stages[1].ID != "setup-python" {
		t.Fatalf("Get exposed the built-in template: %+v", again.Stages[:2])
	}
}

func TestAll_NoDuplicateIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, tmpl := range All() {
		if seen[tmpl.ID] {
			t.Errorf("duplicate template id: %q", tmpl.ID)
		}
		seen[tmpl.ID] = true
	}
}

func TestAll_TemplatesAreValidPipelines(t *testing.T) {
	for _, tmpl := range All() {
		p := Clone(tmpl, "id", time.Now())
		if err := pipeline.Validate(p); err != nil {
			t.Errorf("template %q: %v", tmpl.ID, err)
		}
		if tmpl.Dockerfile == "" || tmpl.Description == "" {
			t.Errorf("template %q has empty fields", tmpl.ID)
		}
	}
}

func TestAll_GeneratedWorkflowsParse(t *testing.T) {
	for _, tmpl := range All() {
		yml, err := generate.GitHubActions(Clone(tmpl, "id", time.Now()))
		if err != nil {
			t.Fatalf("template %q: %v", tmpl.ID, err)
		}
		var doc struct {
			Name string                    `yaml:"name"`
			Jobs map[string]map[string]any `yaml:"jobs"`
		}
		if err := yaml.Unmarshal([]byte(yml), &doc); err != nil {
			t.Fatalf("template %q: workflow is not valid YAML: %v\n%s", tmpl.ID, err, yml)
		}
		if doc.Name != tmpl.Name {
			t.Errorf("template %q: name = %q", tmpl.ID, doc.Name)
		}
		if len(doc.Jobs) != len(tmpl.Stages) {
			t.Errorf("template %q: %d jobs, want %d", tmpl.ID, len(doc.Jobs), len(tmpl.Stages))
		}
	}
}

func TestGet_Found(t *testing.T) {
	tmpl, err := Get("python-gcp")
	if err != nil {
		t.Fatalf("Get(python-gcp) error: %v", err)
	}
	if tmpl.Language != pipeline.Python || tmpl.DeploymentTarget != pipeline.TargetGCP {
		t.Errorf("got %+v", tmpl)
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := Get("nonexistent")
	if err == nil || !strings.Contains(err.Error(), "unknown template") {
		t.Fatalf("got %v", err)
	}
}

func TestClone_Independent(t *testing.T) {
	tmpl, _ := Get("nodejs-aws")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := Clone(tmpl, "p-1", now)
	if p.ID != "p-1" || !p.Created.Equal(now) || !p.Modified.Equal(now) {
		t.Fatalf("got %+v", p)
	}
	if p.Stages[0].ID != "checkout" {
		t.Fatalf("template stage IDs should be kept, got %q", p.Stages[0].ID)
	}
	p.Stages[0].Commands[0] = pipeline.Run("tampered")
	again, _ := Get("nodejs-aws")
	if again.Stages[0].Commands[0].Kind != pipeline.ActionReference {
		t.Fatal("clone shares commands with the catalog")
	}
}

func TestDockerfilesMatchGenerator(t *testing.T) {
	for _, id := range []string{"nodejs-aws", "python-gcp", "java-azure"} {
		tmpl, _ := Get(id)
		if tmpl.Dockerfile != generate.Dockerfile(tmpl.Language) {
			t.Errorf("template %q Dockerfile differs from generator output", id)
		}
	}
}
