package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCycles is how many host cycles simulate runs when a scenario
// does not say.
const DefaultCycles = 3

// Scenario is a plugin test suite for the simulated host.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Action is the default test action registered at setup.
	Action string `yaml:"action"`

	// Actions are extra test actions; any of them triggers the run.
	Actions []ScenarioAction `yaml:"actions,omitempty"`

	// Steps run in order, fail-fast.
	Steps []ScenarioStep `yaml:"steps"`

	// Invoke lists commands pressed before the first cycle
	// (interactive mode only needs this).
	Invoke []string `yaml:"invoke,omitempty"`

	// Cycles is the number of host cycles to run. Defaults to DefaultCycles.
	Cycles int `yaml:"cycles,omitempty"`
}

// ScenarioAction is an extra test action.
type ScenarioAction struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ScenarioStep is one test step.
type ScenarioStep struct {
	// Name is the display name.
	Name string `yaml:"name"`

	// Kind selects the behavior:
	// - "pass": succeed
	// - "fail": fail with Message as the reason
	// - "crash": raise a host fault with Message
	// - "console": write Message to the host console and succeed
	Kind string `yaml:"kind"`

	// Message is the reason, fault text or console text.
	Message string `yaml:"message,omitempty"`
}

// Step kind constants.
const (
	StepPass    = "pass"
	StepFail    = "fail"
	StepCrash   = "crash"
	StepConsole = "console"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if scenario.Cycles == 0 {
		scenario.Cycles = DefaultCycles
	}
	return &scenario, nil
}

// Validate checks required fields and step kinds. All problems are
// reported together.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("missing required field: name"))
	}
	if s.Action == "" {
		errs = append(errs, errors.New("missing required field: action"))
	}
	if s.Cycles < 0 {
		errs = append(errs, fmt.Errorf("cycles must not be negative, got %d", s.Cycles))
	}
	for i, a := range s.Actions {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("actions[%d]: missing name", i))
		}
	}
	for i, step := range s.Steps {
		if step.Name == "" {
			errs = append(errs, fmt.Errorf("steps[%d]: missing name", i))
		}
		switch step.Kind {
		case StepPass, StepConsole, StepCrash:
		case StepFail:
			if step.Message == "" {
				errs = append(errs, fmt.Errorf("steps[%d] %q: fail needs a message", i, step.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("steps[%d] %q: unknown kind %q", i, step.Name, step.Kind))
		}
	}
	return errors.Join(errs...)
}
