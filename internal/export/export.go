// Package export writes generated pipeline files and simulation reports to disk.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/pipecraft/internal/generate"
	"github.com/jorge-barreto/pipecraft/internal/simulate"
)

// ErrExists is returned when a target file is already present and force is off.
var ErrExists = errors.New("file already exists")

// WriteFiles writes every generated file into dir and returns the written
// paths in name order. Nothing is written if any target exists and force is
// false.
func WriteFiles(dir string, files map[string]string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	names := generate.FileNames(files)
	if !force {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrExists)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := writeFileAtomic(path, []byte(files[name]), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteReport saves a finished simulation run as indented JSON.
func WriteReport(path string, run *simulate.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report dir %s: %w", dir, err)
		}
	}
	return writeFileAtomic(path, append(data, '\n'), 0644)
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*simulate.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run simulate.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &run, nil
}
