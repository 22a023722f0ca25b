package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.schema.json
var fileSchemaJSON []byte

var fileSchema = gojsonschema.NewBytesLoader(fileSchemaJSON)

type fileDocument struct {
	Scenarios []fileScenario `yaml:"scenarios"`
}

type fileScenario struct {
	Name          string     `yaml:"name"`
	Description   string     `yaml:"description"`
	URL           string     `yaml:"url"`
	Title         string     `yaml:"title"`
	Steps         []fileStep `yaml:"steps"`
	ExpectFailure bool       `yaml:"expect_failure"`
}

type fileStep struct {
	Visible string `yaml:"visible"`
	Click   string `yaml:"click"`
}

// LoadFile reads and validates a YAML scenario file
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates a YAML scenario document against the embedded schema and
// converts it. source names the document in errors.
func Parse(source string, data []byte) ([]Scenario, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	result, err := gojsonschema.Validate(fileSchema, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		verr := &ValidationError{Source: source}
		for _, e := range result.Errors() {
			verr.Problems = append(verr.Problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, verr
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}

	verr := &ValidationError{Source: source}
	seen := make(map[string]bool, len(doc.Scenarios))
	scenarios := make([]Scenario, 0, len(doc.Scenarios))
	for i, fs := range doc.Scenarios {
		if seen[fs.Name] {
			verr.Problems = append(verr.Problems, fmt.Sprintf("scenarios.%d: duplicate name %q", i, fs.Name))
			continue
		}
		seen[fs.Name] = true

		s, problems := fs.convert(i)
		if len(problems) > 0 {
			verr.Problems = append(verr.Problems, problems...)
			continue
		}
		scenarios = append(scenarios, s)
	}
	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return scenarios, nil
}

func (fs fileScenario) convert(idx int) (Scenario, []string) {
	var problems []string

	title, err := regexp.Compile(fs.Title)
	if err != nil {
		problems = append(problems, fmt.Sprintf("scenarios.%d.title: %v", idx, err))
	}

	steps := make([]Step, 0, len(fs.Steps))
	for j, st := range fs.Steps {
		kind, text := ExpectVisible, st.Visible
		if st.Click != "" {
			kind, text = Click, st.Click
		}
		target, err := ParseLocator(text)
		if err != nil {
			problems = append(problems, fmt.Sprintf("scenarios.%d.steps.%d: %v", idx, j, err))
			continue
		}
		steps = append(steps, Step{Kind: kind, Target: target})
	}

	return Scenario{
		Name:          fs.Name,
		Description:   fs.Description,
		URL:           fs.URL,
		Title:         title,
		Steps:         steps,
		ExpectFailure: fs.ExpectFailure,
	}, problems
}
