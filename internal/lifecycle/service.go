package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/quartermasterlabs/armory-backend/internal/ledger"
	"github.com/quartermasterlabs/armory-backend/internal/registry"
	"github.com/quartermasterlabs/armory-backend/pkg/config"
	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/metrics"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckOutInput captures one checkout intake record.
type CheckOutInput struct {
	Serial        string
	CustodianID   string
	CustodianName string
	CheckoutDate  types.Date
	DueDate       types.Date
	Notes         string
}

// CheckInInput captures one check-in intake record.
type CheckInInput struct {
	Serial      string
	CheckinDate types.Date
	Condition   enums.Condition
	Notes       string
}

// Availability is the per-item answer the availability dialog renders.
type Availability struct {
	SerialNumber string           `json:"serial_number"`
	Available    bool             `json:"available"`
	Status       enums.ItemStatus `json:"status"`
	Detail       string           `json:"detail"`
	Custodian    string           `json:"custodian,omitempty"`
	DueDate      types.Date       `json:"due_date"`
}

// OverdueItem is one row of the overdue report.
type OverdueItem struct {
	SerialNumber string     `json:"serial_number"`
	Name         string     `json:"name"`
	Custodian    string     `json:"custodian"`
	DueDate      types.Date `json:"due_date"`
	DaysOverdue  int        `json:"days_overdue"`
}

// Service is the only writer of equipment status. All custody movement goes
// through it so the registry and the log never disagree.
type Service interface {
	CheckOut(ctx context.Context, input CheckOutInput) (*models.Transaction, error)
	CheckIn(ctx context.Context, input CheckInInput) (*models.Transaction, error)
	Availability(ctx context.Context, serial string) (*Availability, error)
	EarliestAvailable(ctx context.Context, serial string, today types.Date) (types.Date, error)
	ListAvailable(ctx context.Context) ([]models.Item, error)
	ListOverdue(ctx context.Context, today types.Date) ([]OverdueItem, error)
}

type service struct {
	// mu serializes custody movement. The workflow is human-paced, so a
	// single critical section is simpler than row locking and still keeps
	// seq assignment collision-free.
	mu sync.Mutex

	runner TxRunner
	items  registry.Repository
	log    ledger.Repository
	txm    *metrics.TransactionMetrics
	clock  func() time.Time

	returnBufferDays int
	defaultLoanDays  int
}

// NewService wires a lifecycle engine with the provided dependencies.
func NewService(runner TxRunner, items registry.Repository, log ledger.Repository, txm *metrics.TransactionMetrics, cfg config.CheckoutConfig) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if items == nil {
		return nil, fmt.Errorf("registry repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("ledger repository required")
	}

	bufferDays := cfg.ReturnBufferDays
	if bufferDays < 0 {
		bufferDays = 0
	}
	loanDays := cfg.DefaultLoanDays
	if loanDays <= 0 {
		loanDays = 7
	}

	return &service{
		runner:           runner,
		items:            items,
		log:              log,
		txm:              txm,
		clock:            time.Now,
		returnBufferDays: bufferDays,
		defaultLoanDays:  loanDays,
	}, nil
}

func (s *service) today() types.Date {
	return types.DateOf(s.clock().UTC())
}

func (s *service) CheckOut(ctx context.Context, input CheckOutInput) (*models.Transaction, error) {
	txn, err := s.checkOut(ctx, input)
	if err != nil {
		s.txm.IncCheckout("error")
		return nil, err
	}
	s.txm.IncCheckout("success")
	return txn, nil
}

func (s *service) checkOut(ctx context.Context, input CheckOutInput) (*models.Transaction, error) {
	serial := strings.TrimSpace(input.Serial)
	custodian := strings.TrimSpace(input.CustodianName)
	if serial == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serial number is required")
	}
	if custodian == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custodian name is required")
	}

	checkoutDate := input.CheckoutDate
	if checkoutDate.IsZero() {
		checkoutDate = s.today()
	}
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = checkoutDate.AddDays(s.defaultLoanDays)
	}
	if dueDate.Before(checkoutDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date precedes checkout date")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var txn *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		log := s.log.WithTx(tx)

		item, err := items.FindBySerial(ctx, serial)
		if err != nil {
			return err
		}
		if item.Status != enums.ItemStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("equipment is not available (current status: %s)", item.Status))
		}

		seq, err := log.NextSeq(ctx)
		if err != nil {
			return err
		}

		if err := items.SetCheckedOut(ctx, serial, custodian, dueDate); err != nil {
			return err
		}

		txn = &models.Transaction{
			Seq:          seq,
			TxnID:        models.FormatTxnID(seq),
			SerialNumber: item.SerialNumber,
			ItemName:     item.Name,
			CustodianID:  strings.TrimSpace(input.CustodianID),
			Custodian:    custodian,
			CheckoutDate: checkoutDate,
			DueDate:      dueDate,
			Outcome:      enums.TransactionOutcomeActive,
			Notes:        strings.TrimSpace(input.Notes),
		}
		return log.Append(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) CheckIn(ctx context.Context, input CheckInInput) (*models.Transaction, error) {
	txn, err := s.checkIn(ctx, input)
	if err != nil {
		s.txm.IncCheckin("error", input.Condition.String())
		return nil, err
	}
	s.txm.IncCheckin("success", txn.Condition.String())
	return txn, nil
}

func (s *service) checkIn(ctx context.Context, input CheckInInput) (*models.Transaction, error) {
	serial := strings.TrimSpace(input.Serial)
	if serial == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serial number is required")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid condition %q", input.Condition))
	}

	checkinDate := input.CheckinDate
	if checkinDate.IsZero() {
		checkinDate = s.today()
	}

	newStatus := enums.ItemStatusAvailable
	if input.Condition.RequiresMaintenance() {
		newStatus = enums.ItemStatusMaintenance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var txn *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		log := s.log.WithTx(tx)

		if _, err := items.FindBySerial(ctx, serial); err != nil {
			return err
		}

		active, err := log.FindActiveBySerial(ctx, serial)
		if err != nil {
			return err
		}

		if err := log.Complete(ctx, active.TxnID, checkinDate, input.Condition, strings.TrimSpace(input.Notes)); err != nil {
			return err
		}
		if err := items.SetReturned(ctx, serial, newStatus); err != nil {
			return err
		}

		active.CheckinDate = checkinDate
		active.Condition = input.Condition
		active.Outcome = enums.TransactionOutcomeCompleted
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			active.Notes = notes
		}
		txn = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Availability answers the availability dialog for one serial.
func (s *service) Availability(ctx context.Context, serial string) (*Availability, error) {
	item, err := s.items.FindBySerial(ctx, strings.TrimSpace(serial))
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Equipment not found")
		}
		return nil, err
	}

	out := &Availability{
		SerialNumber: item.SerialNumber,
		Status:       item.Status,
		DueDate:      item.DueDate,
	}

	switch item.Status {
	case enums.ItemStatusAvailable:
		out.Available = true
		out.Detail = "Available"
	case enums.ItemStatusCheckedOut:
		out.Custodian = item.CurrentCustodian
		out.Detail = fmt.Sprintf("Checked out to %s, due back %s", item.CurrentCustodian, item.DueDate)
	case enums.ItemStatusOverdue:
		out.Custodian = item.CurrentCustodian
		out.Detail = fmt.Sprintf("Overdue - currently with %s", item.CurrentCustodian)
	case enums.ItemStatusMaintenance:
		out.Detail = "Currently in maintenance"
	case enums.ItemStatusLost:
		out.Detail = "Reported as lost"
	default:
		out.Detail = fmt.Sprintf("Unknown status %q", item.Status)
	}
	return out, nil
}

// EarliestAvailable projects the soonest date the item could be issued
// again. Past-due items are assumed returned immediately; on-time items get
// the configured buffer day after their due date.
func (s *service) EarliestAvailable(ctx context.Context, serial string, today types.Date) (types.Date, error) {
	if today.IsZero() {
		today = s.today()
	}

	item, err := s.items.FindBySerial(ctx, strings.TrimSpace(serial))
	if err != nil {
		return types.Date{}, err
	}

	switch item.Status {
	case enums.ItemStatusAvailable:
		return today, nil
	case enums.ItemStatusCheckedOut, enums.ItemStatusOverdue:
		if item.DueDate.IsZero() || item.DueDate.Before(today) {
			return today, nil
		}
		return item.DueDate.AddDays(s.returnBufferDays), nil
	default:
		// Maintenance and lost items carry no due date; the optimistic
		// projection treats them as issuable today.
		return today, nil
	}
}

func (s *service) ListAvailable(ctx context.Context) ([]models.Item, error) {
	return s.items.ListByStatus(ctx, enums.ItemStatusAvailable)
}

func (s *service) ListOverdue(ctx context.Context, today types.Date) ([]OverdueItem, error) {
	if today.IsZero() {
		today = s.today()
	}

	items, err := s.items.ListDueBefore(ctx, today)
	if err != nil {
		return nil, err
	}

	report := make([]OverdueItem, 0, len(items))
	for _, item := range items {
		days := int(today.Time().Sub(item.DueDate.Time()).Hours() / 24)
		report = append(report, OverdueItem{
			SerialNumber: item.SerialNumber,
			Name:         item.Name,
			Custodian:    item.CurrentCustodian,
			DueDate:      item.DueDate,
			DaysOverdue:  days,
		})
	}
	return report, nil
}
