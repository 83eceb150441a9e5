package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/pipecraft/internal/config"
	"github.com/jorge-barreto/pipecraft/internal/ux"
)

var starterPipeline = `name: my-project
platform: github-actions
deployment-target: custom
language: javascript

stages:
  - id: checkout
    name: Checkout
    type: build
    commands:
      - "uses: actions/checkout@v3"

  - id: build
    name: Build
    type: build
    depends-on: [checkout]
    commands:
      - "run: npm ci"
      - "run: npm run build"
    artifacts:
      - dist/

  - id: test
    name: Test
    type: test
    depends-on: [build]
    environment:
      CI: "true"
    commands:
      - "run: npm test"
`

// Init creates pipecraft.yaml in targetDir with a starter pipeline.
func Init(targetDir string) error {
	path := filepath.Join(targetDir, config.DefaultYAMLFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists in %s", config.DefaultYAMLFile, targetDir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(path, []byte(starterPipeline), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", config.DefaultYAMLFile, err)
	}

	fmt.Printf("\n%s%s✓ Initialized %s%s\n\n", ux.Bold, ux.Green, config.DefaultYAMLFile, ux.Reset)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Edit %s%s%s to define your stages\n", ux.Cyan, config.DefaultYAMLFile, ux.Reset)
	fmt.Printf("    2. Run %spipecraft show%s to check the job order\n", ux.Cyan, ux.Reset)
	fmt.Printf("    3. Run %spipecraft generate%s to write the CI files\n\n", ux.Cyan, ux.Reset)

	return nil
}

// Write saves cfg as YAML at path. An existing file is only replaced when
// force is set.
func Write(path string, cfg *config.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
