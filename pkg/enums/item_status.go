package enums

import "fmt"

// ItemStatus tracks the lifecycle of an equipment item.
type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusCheckedOut  ItemStatus = "checked_out"
	ItemStatusOverdue     ItemStatus = "overdue"
	ItemStatusMaintenance ItemStatus = "maintenance"
	ItemStatusLost        ItemStatus = "lost"
)

var validItemStatuses = []ItemStatus{
	ItemStatusAvailable,
	ItemStatusCheckedOut,
	ItemStatusOverdue,
	ItemStatusMaintenance,
	ItemStatusLost,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOut reports whether the item is in a custodian's hands.
func (s ItemStatus) IsOut() bool {
	return s == ItemStatusCheckedOut || s == ItemStatusOverdue
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
