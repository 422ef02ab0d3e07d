package ratelimit

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Operation names for the sensitive operations backed by per-operation
// thresholds.
const (
	OpTaskCreation = "task_creation"
	OpTaskUpdate   = "task_update"
	OpLogin        = "login_attempts"
	OpAPIRequest   = "api_requests"
)

type Policy struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// UnmarshalYAML accepts windows in time.ParseDuration notation ("60s").
func (p *Policy) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Max    int    `yaml:"max"`
		Window string `yaml:"window"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	window, err := time.ParseDuration(raw.Window)
	if err != nil {
		return fmt.Errorf("invalid window %q: %w", raw.Window, err)
	}
	p.Max = raw.Max
	p.Window = window
	return nil
}

// DefaultPolicies returns the built-in per-operation thresholds.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		OpTaskCreation: {Max: 20, Window: time.Minute},
		OpTaskUpdate:   {Max: 50, Window: time.Minute},
		OpLogin:        {Max: 5, Window: 5 * time.Minute},
		OpAPIRequest:   {Max: 100, Window: time.Minute},
	}
}

// LoadPolicies reads per-operation overrides from a YAML file and merges
// them over the defaults. Unknown operations are kept as configured.
func LoadPolicies(path string) (map[string]Policy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	overrides := map[string]Policy{}
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	policies := DefaultPolicies()
	for op, p := range overrides {
		if p.Max <= 0 || p.Window <= 0 {
			return nil, fmt.Errorf("invalid policy for %q: max and window must be positive", op)
		}
		policies[op] = p
	}
	return policies, nil
}
