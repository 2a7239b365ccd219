package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bizlab-kr/leadbot/internal/models"
	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk question list.
type SeedFile struct {
	Questions []models.Question `yaml:"questions"`
}

// LoadSeedFile reads and validates a seed file. Questions without order_index take
// their position in the file and questions without is_active are active.
func LoadSeedFile(path string) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML. Unknown keys are rejected so typos surface early.
func ParseSeed(data []byte) ([]models.Question, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file SeedFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("seed has no questions")
	}

	// is_active defaults to true, which the zero value cannot express.
	var flags struct {
		Questions []struct {
			IsActive *bool `yaml:"is_active"`
		} `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seen := make(map[string]bool, len(file.Questions))
	for i := range file.Questions {
		q := &file.Questions[i]
		if flags.Questions[i].IsActive == nil {
			q.IsActive = true
		}
		if q.OrderIndex == 0 {
			q.OrderIndex = i + 1
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d (%s): %w", i+1, q.Step, err)
		}
		if seen[q.Step] {
			return nil, fmt.Errorf("question %d: duplicate step %q", i+1, q.Step)
		}
		seen[q.Step] = true
	}
	return file.Questions, nil
}
