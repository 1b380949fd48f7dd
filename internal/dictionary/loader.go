package dictionary

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lab-report-explainer/internal/domain"
)

type fileFormat struct {
	Tests []domain.TestReference `yaml:"tests"`
}

// Parse decodes a YAML reference table. Unknown keys are rejected so typos in
// hand-edited files surface at startup.
func Parse(data []byte) (*Dictionary, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f fileFormat
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}
	return New(f.Tests)
}

// LoadFile reads a YAML reference table from disk
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// FromConfig returns the dictionary at path, or the built-in one when path is empty
func FromConfig(path string) (*Dictionary, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
