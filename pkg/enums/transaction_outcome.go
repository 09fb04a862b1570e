package enums

import "fmt"

// TransactionOutcome tracks whether a checkout has been matched by a check-in.
type TransactionOutcome string

const (
	TransactionOutcomeActive    TransactionOutcome = "active"
	TransactionOutcomeCompleted TransactionOutcome = "completed"
)

var validTransactionOutcomes = []TransactionOutcome{
	TransactionOutcomeActive,
	TransactionOutcomeCompleted,
}

// String implements fmt.Stringer.
func (o TransactionOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known TransactionOutcome.
func (o TransactionOutcome) IsValid() bool {
	for _, candidate := range validTransactionOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseTransactionOutcome converts raw input into a TransactionOutcome.
func ParseTransactionOutcome(value string) (TransactionOutcome, error) {
	for _, candidate := range validTransactionOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction outcome %q", value)
}
