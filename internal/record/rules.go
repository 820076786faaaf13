package record

import (
	"fmt"
	"time"

	"idatech-backoffice/internal/model"
)

// Rule reconstructs a record from a trash snapshot. Missing or incompatible
// fields take the variant default and the result carries no id.
type Rule func(snapshot map[string]any, now time.Time) (model.Record, error)

// Rules maps trash item types to their reconstruction rule.
type Rules map[string]Rule

// DefaultRules registers a default-filling rule for every known variant.
func DefaultRules() Rules {
	rules := Rules{}
	for _, variant := range model.Variants() {
		rules[string(variant)] = lenientRule(variant)
	}
	return rules
}

func lenientRule(variant model.Variant) Rule {
	return func(snapshot map[string]any, now time.Time) (model.Record, error) {
		rec, _, err := bind(variant, StringFields(snapshot), lenient, now)
		return rec, err
	}
}

// Reconstruct dispatches a snapshot to the rule registered for itemType.
func (r Rules) Reconstruct(itemType string, snapshot map[string]any, now time.Time) (model.Record, error) {
	rule, ok := r[itemType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedItemType, itemType)
	}
	return rule(snapshot, now)
}

// CheckRules fails when a record variant has no reconstruction rule.
func CheckRules(rules Rules) error {
	for _, variant := range model.Variants() {
		if _, ok := rules[string(variant)]; !ok {
			return fmt.Errorf("no reconstruction rule registered for %s", variant)
		}
	}
	return nil
}
