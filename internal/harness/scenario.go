package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultNow is the clock reading used when a scenario gives none.
const DefaultNow = "2024-03-20T08:00:00Z"

// Scenario is one scripted session against the board.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// Now is the starting clock reading, RFC3339.
	Now string `yaml:"now,omitempty"`

	// Setup steps establish state and must all succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow holds the steps under test.
	Flow []Step `yaml:"flow"`

	// Assertions are checked once every step has run.
	Assertions []Assertion `yaml:"assertions"`
}

// Step runs one operation.
type Step struct {
	// Do is the operation name, e.g. "addLeave".
	Do string `yaml:"do"`

	// Args are the operation's arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Advance moves the clock forward before the step, e.g. "90m".
	Advance string `yaml:"advance,omitempty"`

	// Expect checks the step's outcome. Without it the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes what a flow step should produce.
type Expect struct {
	// Outcome is "ok" or an error code such as FORBIDDEN or INTEGRITY.
	Outcome string `yaml:"outcome"`

	// Result is matched as a subset of the step's JSON result.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion checks the activity log or final document.
type Assertion struct {
	// Type is one of log_contains, log_order, log_count, final_state, unsaved.
	Type string `yaml:"type"`

	// Action is the activity text (log_contains, log_count).
	Action string `yaml:"action,omitempty"`

	// Actions are activity texts, oldest first (log_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number of entries (log_count).
	Count int `yaml:"count,omitempty"`

	// Path is a dotted path into the document JSON, e.g. "kepsek.status"
	// or "guruIzin.0.nama" (final_state).
	Path string `yaml:"path,omitempty"`

	// Source is "memory" (default) or "stored" (final_state).
	Source string `yaml:"source,omitempty"`

	// Equals is the expected value at Path (final_state) or the expected
	// flag (unsaved).
	Equals any `yaml:"equals,omitempty"`

	// Length is the expected element count of the list at Path (final_state).
	Length *int `yaml:"length,omitempty"`
}

// Assertion type constants.
const (
	AssertLogContains = "log_contains"
	AssertLogOrder    = "log_order"
	AssertLogCount    = "log_count"
	AssertFinalState  = "final_state"
	AssertUnsaved     = "unsaved"
)

// Outcome codes besides the access error codes.
const (
	OutcomeOK           = "ok"
	OutcomeValidation   = "VALIDATION"
	OutcomeIntegrity    = "INTEGRITY"
	OutcomeMalformed    = "MALFORMED"
	OutcomeNotConfirmed = "NOT_CONFIRMED"
	OutcomeNotFound     = "NOT_FOUND"
	OutcomeError        = "ERROR"
)

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

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict fields catch typos like "assertion:" for "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Now != "" {
		if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
			return fmt.Errorf("now: %w", err)
		}
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("flow[%d].expect: outcome is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(where string, step Step) error {
	if step.Do == "" {
		return fmt.Errorf("%s: do is required", where)
	}
	if _, ok := operations[step.Do]; !ok {
		return fmt.Errorf("%s: unknown operation %q", where, step.Do)
	}
	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("%s: advance: %w", where, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: advance must not be negative", where)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLogContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for log_contains", index)
		}
	case AssertLogOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for log_order", index)
		}
	case AssertLogCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_count", index)
		}
	case AssertFinalState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_state", index)
		}
		if a.Equals == nil && a.Length == nil {
			return fmt.Errorf("assertions[%d]: equals or length is required for final_state", index)
		}
		if a.Source != "" && a.Source != "memory" && a.Source != "stored" {
			return fmt.Errorf("assertions[%d]: source must be memory or stored", index)
		}
	case AssertUnsaved:
		if _, ok := a.Equals.(bool); !ok {
			return fmt.Errorf("assertions[%d]: equals must be true or false for unsaved", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
