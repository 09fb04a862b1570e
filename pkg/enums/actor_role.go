package enums

import "fmt"

// ActorRole classifies who is calling the API.
type ActorRole string

const (
	// ActorRoleArmorer runs the equipment room and may record transactions.
	ActorRoleArmorer ActorRole = "armorer"
	// ActorRoleStaff may query availability and reports but not mutate.
	ActorRoleStaff ActorRole = "staff"
)

var validActorRoles = []ActorRole{
	ActorRoleArmorer,
	ActorRoleStaff,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanRecordTransactions reports whether the role may write to the checkout log.
func (r ActorRole) CanRecordTransactions() bool {
	return r == ActorRoleArmorer
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
