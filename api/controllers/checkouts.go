package controllers

import (
	"net/http"

	"github.com/quartermasterlabs/armory-backend/api/responses"
	"github.com/quartermasterlabs/armory-backend/api/validators"
	"github.com/quartermasterlabs/armory-backend/internal/lifecycle"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// CheckoutRequest is the direct checkout payload.
type CheckoutRequest struct {
	SerialNumber  string     `json:"serial_number" validate:"required"`
	CustodianID   string     `json:"custodian_id"`
	CustodianName string     `json:"custodian_name" validate:"required"`
	CheckoutDate  types.Date `json:"checkout_date"`
	DueDate       types.Date `json:"due_date"`
	Notes         string     `json:"notes" validate:"max=2000"`
}

// CreateCheckout issues equipment to a custodian.
func CreateCheckout(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		var req CheckoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSerialNumber(ctx, req.SerialNumber)
		}

		txn, err := svc.CheckOut(ctx, lifecycle.CheckOutInput{
			Serial:        req.SerialNumber,
			CustodianID:   req.CustodianID,
			CustodianName: req.CustodianName,
			CheckoutDate:  req.CheckoutDate,
			DueDate:       req.DueDate,
			Notes:         req.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithTransactionID(ctx, txn.TxnID)
			logg.Info(ctx, "equipment checked out")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
