package enums

import "fmt"

// Condition captures the reported state of equipment at check-in.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionDamaged   Condition = "damaged"
)

var validConditions = []Condition{
	ConditionExcellent,
	ConditionGood,
	ConditionFair,
	ConditionPoor,
	ConditionDamaged,
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Condition.
func (c Condition) IsValid() bool {
	for _, candidate := range validConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// RequiresMaintenance reports whether returned equipment must be pulled from
// circulation instead of going back to available.
func (c Condition) RequiresMaintenance() bool {
	return c == ConditionPoor || c == ConditionDamaged
}

// ParseCondition converts raw input into a Condition.
func ParseCondition(value string) (Condition, error) {
	for _, candidate := range validConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid condition %q", value)
}
