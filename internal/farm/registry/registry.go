// Package registry loads the versioned table of survey types and their
// canonical questions.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"gopkg.in/yaml.v2"
)

//go:embed questions.yaml
var defaultTable []byte

type tableFile struct {
	Version     int             `yaml:"version"`
	SurveyTypes []surveyTypeDef `yaml:"survey_types"`
}

type surveyTypeDef struct {
	Name      string   `yaml:"name"`
	Questions []string `yaml:"questions"`
}

// Default returns the registry compiled into the binary.
func Default() (*domain.Registry, error) {
	return Parse(defaultTable)
}

// Load reads the question table at path, or the embedded table when path is empty.
func Load(path string) (*domain.Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question table %s: %w", path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("question table %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a YAML question table.
func Parse(data []byte) (*domain.Registry, error) {
	var table tableFile
	if err := yaml.UnmarshalStrict(data, &table); err != nil {
		return nil, fmt.Errorf("parsing question table: %w", err)
	}
	if len(table.SurveyTypes) == 0 {
		return nil, errors.New("question table defines no survey types")
	}

	seen := make(map[string]struct{}, len(table.SurveyTypes))
	types := make([]domain.SurveyType, 0, len(table.SurveyTypes))
	for i, def := range table.SurveyTypes {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("survey type #%d has no name", i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("survey type %q is defined twice", name)
		}
		seen[name] = struct{}{}
		if len(def.Questions) == 0 {
			return nil, fmt.Errorf("survey type %q has no questions", name)
		}
		for _, q := range def.Questions {
			if strings.TrimSpace(q) == "" {
				return nil, fmt.Errorf("survey type %q has an empty question", name)
			}
		}
		types = append(types, domain.SurveyType{Name: name, Questions: def.Questions})
	}

	return domain.NewRegistry(table.Version, types), nil
}
