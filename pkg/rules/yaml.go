package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseRuleSet parses a YAML catalogue document and validates it.
// Custom predicates cannot be expressed in YAML; a parsed catalogue
// contains tagged predicates only.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rule catalogue: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule catalogue: %w", err)
	}
	return &rs, nil
}

// MarshalRuleSet serializes a catalogue to YAML for export and
// documentation. Rules with custom predicates are rejected because the
// predicate body cannot be represented.
func MarshalRuleSet(rs *RuleSet) ([]byte, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	for _, r := range rs.Rules {
		if r.Custom != nil {
			return nil, fmt.Errorf("rule %q uses a custom predicate and cannot be serialized", r.ID)
		}
	}
	out, err := yaml.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule catalogue: %w", err)
	}
	return out, nil
}
