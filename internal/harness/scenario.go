package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/marlang/marlang/internal/lang"
)

// Scenario is one program, its rules and the assertions checked after
// simplification.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Rules is a CUE rule set file. LoadScenario resolves it against the
	// scenario's directory.
	Rules string `yaml:"rules,omitempty"`

	// Rewrites are inline rules applied after those of Rules.
	Rewrites []InlineRule `yaml:"rewrites,omitempty"`

	// Iterations overrides the rule set's round limit.
	Iterations *int `yaml:"iterations,omitempty"`

	Commands   []string    `yaml:"commands"`
	Assertions []Assertion `yaml:"assertions"`
}

// InlineRule is a rewrite written directly in the scenario.
type InlineRule struct {
	Name string `yaml:"name"`
	Lhs  string `yaml:"lhs"`
	Rhs  string `yaml:"rhs"`
}

// Assertion checks one property of a run. Which fields apply depends on Type.
type Assertion struct {
	Type   string `yaml:"type"`
	Term   string `yaml:"term,omitempty"`
	Lhs    string `yaml:"lhs,omitempty"`
	Rhs    string `yaml:"rhs,omitempty"`
	Rule   string `yaml:"rule,omitempty"`
	Expect string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertBest          = "best"
	AssertAny           = "any"
	AssertBestOf        = "best_of"
	AssertEquivalent    = "equivalent"
	AssertNotEquivalent = "not_equivalent"
	AssertExplains      = "explains"
	AssertConstant      = "constant"
	AssertStopReason    = "stop_reason"
	AssertSorts         = "sorts"
)

// LoadScenario reads and validates a scenario file. Unknown fields, missing
// required fields and unparsable terms are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Rules != "" && !filepath.IsAbs(s.Rules) {
		s.Rules = filepath.Join(filepath.Dir(path), s.Rules)
	}
	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); err != nil {
			return nil, fmt.Errorf("invalid scenario: rules file: %w", err)
		}
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. The rules path is left
// as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Commands) == 0 {
		return fmt.Errorf("commands list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Iterations != nil && *s.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative")
	}

	for i, cmd := range s.Commands {
		if _, err := lang.ParseTerm(cmd); err != nil {
			return fmt.Errorf("commands[%d]: %w", i, err)
		}
	}
	for i, r := range s.Rewrites {
		if r.Name == "" || r.Lhs == "" || r.Rhs == "" {
			return fmt.Errorf("rewrites[%d]: name, lhs and rhs are required", i)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("assertions[%d]: %s is required for %s", index, field, a.Type)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertBest, AssertAny, AssertStopReason:
		return need("expect", a.Expect)
	case AssertBestOf, AssertConstant:
		if err := need("term", a.Term); err != nil {
			return err
		}
		return need("expect", a.Expect)
	case AssertEquivalent, AssertNotEquivalent, AssertExplains:
		if err := need("lhs", a.Lhs); err != nil {
			return err
		}
		return need("rhs", a.Rhs)
	case AssertSorts:
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
}
