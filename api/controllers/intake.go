package controllers

import (
	"net/http"
	"strings"

	"github.com/quartermasterlabs/armory-backend/api/middleware"
	"github.com/quartermasterlabs/armory-backend/api/responses"
	"github.com/quartermasterlabs/armory-backend/api/validators"
	"github.com/quartermasterlabs/armory-backend/internal/lifecycle"
	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// IntakeSubmission is the combined intake form payload. A single form covers
// both directions of custody movement, so the transaction type field selects
// which fields are required.
type IntakeSubmission struct {
	TransactionType string     `json:"transaction_type" validate:"required,oneof=CHECK-OUT CHECK-IN"`
	SerialNumber    string     `json:"serial_number" validate:"required"`
	CustodianID     string     `json:"custodian_id"`
	CustodianName   string     `json:"custodian_name"`
	Date            types.Date `json:"date"`
	DueDate         types.Date `json:"due_date"`
	Condition       string     `json:"condition"`
	Notes           string     `json:"notes" validate:"max=2000"`
}

// SubmitIntake accepts one intake form submission and dispatches it to the
// matching custody operation.
func SubmitIntake(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		var sub IntakeSubmission
		if err := validators.DecodeJSONBody(r, &sub); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txnType, err := enums.ParseTransactionType(sub.TransactionType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSerialNumber(ctx, sub.SerialNumber)
		}

		// the form's requester is the custodian unless one is named
		if sub.CustodianName == "" {
			sub.CustodianName = middleware.UserNameFromContext(ctx)
		}
		if sub.CustodianID == "" {
			sub.CustodianID = middleware.UserIDFromContext(ctx)
		}

		var txn *models.Transaction
		switch txnType {
		case enums.TransactionTypeCheckOut:
			txn, err = svc.CheckOut(ctx, lifecycle.CheckOutInput{
				Serial:        sub.SerialNumber,
				CustodianID:   sub.CustodianID,
				CustodianName: sub.CustodianName,
				CheckoutDate:  sub.Date,
				DueDate:       sub.DueDate,
				Notes:         sub.Notes,
			})
		case enums.TransactionTypeCheckIn:
			var condition enums.Condition
			condition, err = enums.ParseCondition(strings.ToLower(sub.Condition))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			txn, err = svc.CheckIn(ctx, lifecycle.CheckInInput{
				Serial:      sub.SerialNumber,
				CheckinDate: sub.Date,
				Condition:   condition,
				Notes:       sub.Notes,
			})
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithTransactionID(ctx, txn.TxnID)
			ctx = logg.WithField(ctx, "transaction_type", string(txnType))
			logg.Info(ctx, "intake submission recorded")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
