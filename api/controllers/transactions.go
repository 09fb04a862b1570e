package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quartermasterlabs/armory-backend/api/responses"
	"github.com/quartermasterlabs/armory-backend/api/validators"
	"github.com/quartermasterlabs/armory-backend/internal/ledger"
	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/pagination"
)

// TransactionPage is one page of log entries, newest first.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

// ListTransactions pages through the checkout log newest-first.
func ListTransactions(repo ledger.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		txns, err := repo.List(r.Context(), cursor, pagination.LimitWithBuffer(limit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := TransactionPage{Transactions: txns}
		if len(txns) > limit {
			page.Transactions = txns[:limit]
			last := page.Transactions[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Seq: last.Seq})
		}
		responses.WriteSuccess(w, page)
	}
}

// ListEquipmentTransactions returns the full custody history of one item,
// oldest first.
func ListEquipmentTransactions(repo ledger.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository unavailable"))
			return
		}

		serial := chi.URLParam(r, "serial")
		if serial == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "serial number required"))
			return
		}

		txns, err := repo.ListBySerial(r.Context(), serial)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txns)
	}
}
