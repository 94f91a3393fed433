// Package rules implements the compliance checker and its built-in
// convention rules. Rules are data-driven: a rules file declares an ordered
// list of rule specs, each spec names a registered constructor, and the
// checker evaluates the constructed rules independently. Adding a convention
// means registering a constructor, not editing the checker.
package rules

import (
	"fmt"
	"os"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/tsindex/domain"
)

// Spec is one rule entry of a rules file. Which fields apply depends on the
// rule type; the constructor validates its own requirements.
type Spec struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Type     string `yaml:"type" json:"type" mapstructure:"type"`
	Severity string `yaml:"severity" json:"severity" mapstructure:"severity"`

	// Coverage rule.
	Pattern          string `yaml:"pattern,omitempty" json:"pattern,omitempty" mapstructure:"pattern"`
	RequiredCoverage int    `yaml:"required_coverage,omitempty" json:"required_coverage,omitempty" mapstructure:"required_coverage"`

	// Naming and boundary rules.
	RoleDir string `yaml:"role_dir,omitempty" json:"role_dir,omitempty" mapstructure:"role_dir"`
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty" mapstructure:"prefix"`
	Suffix  string `yaml:"suffix,omitempty" json:"suffix,omitempty" mapstructure:"suffix"`

	// Location rule.
	TypesDir string `yaml:"types_dir,omitempty" json:"types_dir,omitempty" mapstructure:"types_dir"`

	// Boundary rule: import targets starting with one of these prefixes are
	// always allowed.
	AllowedPrefixes []string `yaml:"allowed_prefixes,omitempty" json:"allowed_prefixes,omitempty" mapstructure:"allowed_prefixes"`
}

// Validate checks the fields every rule type shares.
func (s Spec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Type, validation.Required, validation.In(registeredTypes()...)),
		validation.Field(&s.Severity, validation.In("", "error", "warning", "info")),
		validation.Field(&s.RequiredCoverage, validation.Min(0), validation.Max(100)),
	)
}

func (s Spec) severity() domain.Severity {
	switch s.Severity {
	case "error":
		return domain.SeverityError
	case "info":
		return domain.SeverityInfo
	default:
		return domain.SeverityWarning
	}
}

// Constructor builds a Rule from its Spec.
type Constructor func(Spec) (domain.Rule, error)

var constructors = map[string]Constructor{}

// Register makes a rule type available to FromSpecs. Registering an existing
// type replaces its constructor.
func Register(ruleType string, ctor Constructor) {
	constructors[ruleType] = ctor
}

func registeredTypes() []interface{} {
	types := make([]string, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]interface{}, len(types))
	for i, t := range types {
		out[i] = t
	}
	return out
}

// FromSpecs constructs rules in spec order. A spec that fails validation or
// names an unregistered type is a *domain.ConfigError.
func FromSpecs(specs []Spec) ([]domain.Rule, error) {
	rules := make([]domain.Rule, 0, len(specs))
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("rule %d (%s)", i+1, spec.Name), Err: err}
		}
		ctor, ok := constructors[spec.Type]
		if !ok {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("rule %q has unknown type %q", spec.Name, spec.Type)}
		}
		rule, err := ctor(spec)
		if err != nil {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("rule %q", spec.Name), Err: err}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// File is the standalone rules-file layout.
type File struct {
	Rules []Spec `yaml:"rules" json:"rules" mapstructure:"rules"`
}

// LoadFile reads and constructs the rules of a YAML rules file.
func LoadFile(path string) ([]domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("rules file %s", path), Err: err}
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("rules file %s", path), Err: err}
	}
	if len(f.Rules) == 0 {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("rules file %s declares no rules", path)}
	}
	return FromSpecs(f.Rules)
}

// Checker evaluates an ordered rule list against a Snapshot.
type Checker struct {
	rules []domain.Rule
}

// NewChecker creates a Checker over the given rules. Order is preserved:
// violations are reported rule by rule.
func NewChecker(rules []domain.Rule) *Checker {
	return &Checker{rules: rules}
}

// Rules returns the checker's rule list in evaluation order.
func (c *Checker) Rules() []domain.Rule { return c.rules }

// Run evaluates every rule independently and concatenates the violations.
// The Snapshot is never mutated; rules are pure.
func (c *Checker) Run(snap *domain.Snapshot) []domain.Violation {
	var violations []domain.Violation
	for _, rule := range c.rules {
		violations = append(violations, rule.Evaluate(snap)...)
	}
	return violations
}
