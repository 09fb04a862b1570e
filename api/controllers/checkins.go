package controllers

import (
	"net/http"
	"strings"

	"github.com/quartermasterlabs/armory-backend/api/responses"
	"github.com/quartermasterlabs/armory-backend/api/validators"
	"github.com/quartermasterlabs/armory-backend/internal/lifecycle"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// CheckinRequest is the direct check-in payload.
type CheckinRequest struct {
	SerialNumber string     `json:"serial_number" validate:"required"`
	CheckinDate  types.Date `json:"checkin_date"`
	Condition    string     `json:"condition" validate:"required,oneof=excellent good fair poor damaged"`
	Notes        string     `json:"notes" validate:"max=2000"`
}

// CreateCheckin returns equipment from a custodian.
func CreateCheckin(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		var req CheckinRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		condition, err := enums.ParseCondition(strings.ToLower(req.Condition))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSerialNumber(ctx, req.SerialNumber)
		}

		txn, err := svc.CheckIn(ctx, lifecycle.CheckInInput{
			Serial:      req.SerialNumber,
			CheckinDate: req.CheckinDate,
			Condition:   condition,
			Notes:       req.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithTransactionID(ctx, txn.TxnID)
			logg.Info(ctx, "equipment checked in")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
