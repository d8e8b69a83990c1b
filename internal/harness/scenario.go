package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of engine calls with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Widgets are stored before the first step.
	Widgets []WidgetSpec `yaml:"widgets"`

	// Gadgets are created through the inventory after the widgets, so
	// their widget references must resolve.
	Gadgets []GadgetSpec `yaml:"gadgets"`

	// Token is an optional 24-character token prefix. Empty uses
	// testutil.DefaultTokenPrefix.
	Token string `yaml:"token,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after all steps.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// WidgetSpec declares a widget.
type WidgetSpec struct {
	Name  string   `yaml:"name"`
	Parts []string `yaml:"parts"`
}

// GadgetSpec declares a gadget.
type GadgetSpec struct {
	Name      string   `yaml:"name"`
	Widgets   []string `yaml:"widgets"`
	Functions []string `yaml:"functions"`
}

// Step is one scenario action. Exactly one of the action fields is set.
type Step struct {
	Execute      *ExecuteStep `yaml:"execute,omitempty"`
	Get          *GetStep     `yaml:"get,omitempty"`
	PutWidget    *WidgetSpec  `yaml:"put_widget,omitempty"`
	DeleteWidget string       `yaml:"delete_widget,omitempty"`

	// Expect validates the outcome. If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// ExecuteStep runs a function against a gadget.
type ExecuteStep struct {
	Name   string `yaml:"name"`
	Gadget string `yaml:"gadget"`
}

// GetStep retrieves a stored result, either by literal token or by the
// token an earlier execute step produced.
type GetStep struct {
	Token string `yaml:"token,omitempty"`
	Step  *int   `yaml:"step,omitempty"`
}

// Expect specifies the expected outcome of an execute or get step.
type Expect struct {
	// Output is the expected function output. Empty skips the check.
	Output string `yaml:"output,omitempty"`

	// Error is the expected domain error code, e.g. UNSUPPORTED_FUNCTION.
	Error string `yaml:"error,omitempty"`
}

// Step kinds as they appear in the trace.
const (
	OpExecute      = "execute"
	OpGet          = "get"
	OpPutWidget    = "put_widget"
	OpDeleteWidget = "delete_widget"
)

// Kind returns the step's op name, or "" if no action is set.
func (s Step) Kind() string {
	switch {
	case s.Execute != nil:
		return OpExecute
	case s.Get != nil:
		return OpGet
	case s.PutWidget != nil:
		return OpPutWidget
	case s.DeleteWidget != "":
		return OpDeleteWidget
	}
	return ""
}

func (s Step) actionCount() int {
	n := 0
	if s.Execute != nil {
		n++
	}
	if s.Get != nil {
		n++
	}
	if s.PutWidget != nil {
		n++
	}
	if s.DeleteWidget != "" {
		n++
	}
	return n
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarioFiles returns the *.yaml and *.yml files under dir, sorted.
// A non-empty filter is matched against the base name with filepath.Match.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			ok, err := filepath.Match(filter, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Token != "" && len(s.Token) != 24 {
		return fmt.Errorf("token prefix must be 24 characters, got %d", len(s.Token))
	}

	for i, w := range s.Widgets {
		if w.Name == "" {
			return fmt.Errorf("widgets[%d]: name is required", i)
		}
	}
	for i, g := range s.Gadgets {
		if g.Name == "" {
			return fmt.Errorf("gadgets[%d]: name is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, len(s.Steps)); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	if n := step.actionCount(); n != 1 {
		return fmt.Errorf("steps[%d]: exactly one of execute, get, put_widget, delete_widget is required (got %d)", i, n)
	}

	switch step.Kind() {
	case OpExecute:
		if step.Execute.Name == "" && step.Expect == nil {
			return fmt.Errorf("steps[%d].execute: name is required unless an error is expected", i)
		}
	case OpGet:
		if (step.Get.Token == "") == (step.Get.Step == nil) {
			return fmt.Errorf("steps[%d].get: exactly one of token or step is required", i)
		}
		if step.Get.Step != nil && (*step.Get.Step < 0 || *step.Get.Step >= i) {
			return fmt.Errorf("steps[%d].get: step %d must refer to an earlier step", i, *step.Get.Step)
		}
	case OpPutWidget:
		if step.PutWidget.Name == "" {
			return fmt.Errorf("steps[%d].put_widget: name is required", i)
		}
	}

	if step.Expect != nil {
		if step.Kind() != OpExecute && step.Kind() != OpGet {
			return fmt.Errorf("steps[%d].expect: only execute and get steps take expect", i)
		}
		if step.Expect.Output != "" && step.Expect.Error != "" {
			return fmt.Errorf("steps[%d].expect: output and error are mutually exclusive", i)
		}
	}
	return nil
}
