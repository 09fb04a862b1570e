package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// Item is one trackable piece of equipment. Serial number is the business
// key; descriptive fields are fixed at provisioning and only the lifecycle
// engine mutates status, custodian and due date.
//
// Invariant: status is available exactly when custodian and due date are
// both empty.
type Item struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SerialNumber     string           `gorm:"column:serial_number;not null;uniqueIndex" json:"serial_number"`
	Name             string           `gorm:"column:name;not null" json:"name"`
	Category         string           `gorm:"column:category" json:"category"`
	Location         string           `gorm:"column:location" json:"location"`
	Status           enums.ItemStatus `gorm:"column:status;type:item_status_enum;not null;default:'available'" json:"status"`
	CurrentCustodian string           `gorm:"column:current_custodian" json:"current_custodian,omitempty"`
	DueDate          types.Date       `gorm:"column:due_date;type:date" json:"due_date"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// DisplayName renders the item the way checkout forms list it.
func (i Item) DisplayName() string {
	return i.Name + " (" + i.SerialNumber + ")"
}
