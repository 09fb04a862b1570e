package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// Transaction is one append-only checkout log entry. A row is created at
// check-out as active and mutated exactly once, at check-in, when it
// completes with the check-in date and reported condition.
//
// At most one active transaction exists per serial number (partial unique
// index uq_transactions_active_serial).
type Transaction struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Seq          int64                    `gorm:"column:seq;not null;uniqueIndex" json:"seq"`
	TxnID        string                   `gorm:"column:txn_id;not null;uniqueIndex" json:"txn_id"`
	SerialNumber string                   `gorm:"column:serial_number;not null;index" json:"serial_number"`
	ItemName     string                   `gorm:"column:item_name" json:"item_name"`
	CustodianID  string                   `gorm:"column:custodian_id;not null" json:"custodian_id"`
	Custodian    string                   `gorm:"column:custodian;not null" json:"custodian"`
	CheckoutDate types.Date               `gorm:"column:checkout_date;type:date;not null" json:"checkout_date"`
	DueDate      types.Date               `gorm:"column:due_date;type:date;not null" json:"due_date"`
	CheckinDate  types.Date               `gorm:"column:checkin_date;type:date" json:"checkin_date"`
	Condition    enums.Condition          `gorm:"column:condition" json:"condition,omitempty"`
	Outcome      enums.TransactionOutcome `gorm:"column:outcome;type:transaction_outcome_enum;not null;default:'active'" json:"outcome"`
	Notes        string                   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// FormatTxnID renders a sequence number in the ledger's TXN-<seq> form.
// Three digits of zero padding; the width grows past the thousandth entry.
func FormatTxnID(seq int64) string {
	return fmt.Sprintf("TXN-%03d", seq)
}
