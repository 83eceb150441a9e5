package generate

import (
	"maps"
	"slices"

	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

const (
	GitHubActionsFile = "github-actions.yml"
	JenkinsFile       = "Jenkinsfile"
	DockerFile        = "Dockerfile"
)

// Files generates every artifact for the pipeline's platform, keyed by file
// name. Platforms without a generator only get the Dockerfile.
func Files(p *pipeline.Pipeline) (map[string]string, error) {
	files := make(map[string]string, 2)
	switch p.Platform {
	case pipeline.GitHubActions:
		yml, err := GitHubActions(p)
		if err != nil {
			return nil, err
		}
		files[GitHubActionsFile] = yml
	case pipeline.Jenkins:
		files[JenkinsFile] = Jenkinsfile(p)
	}
	files[DockerFile] = Dockerfile(p.Language)
	return files, nil
}

// FileNames returns the names of the generated files in sorted order.
func FileNames(files map[string]string) []string {
	return slices.Sorted(maps.Keys(files))
}
