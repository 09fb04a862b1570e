package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quartermasterlabs/armory-backend/api/responses"
	"github.com/quartermasterlabs/armory-backend/api/validators"
	"github.com/quartermasterlabs/armory-backend/internal/lifecycle"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// AvailableEquipmentItem is one selectable row for the checkout form.
type AvailableEquipmentItem struct {
	SerialNumber string `json:"serial_number"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
}

// ListAvailableEquipment returns every item currently available for checkout,
// rendered the way the checkout form lists them.
func ListAvailableEquipment(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		items, err := svc.ListAvailable(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]AvailableEquipmentItem, 0, len(items))
		for _, item := range items {
			out = append(out, AvailableEquipmentItem{
				SerialNumber: item.SerialNumber,
				Name:         item.Name,
				DisplayName:  item.DisplayName(),
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// GetEquipmentAvailability answers whether one item can be issued right now.
func GetEquipmentAvailability(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		serial := chi.URLParam(r, "serial")
		if serial == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "serial number required"))
			return
		}

		availability, err := svc.Availability(r.Context(), serial)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}

// EarliestAvailableResponse carries the soonest projected checkout date.
type EarliestAvailableResponse struct {
	SerialNumber      string     `json:"serial_number"`
	EarliestAvailable types.Date `json:"earliest_available"`
}

// GetEarliestAvailable projects the soonest date an item could be issued
// again. An optional today query parameter pins the reference date.
func GetEarliestAvailable(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		serial := chi.URLParam(r, "serial")
		if serial == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "serial number required"))
			return
		}

		today, err := validators.ParseQueryDate(r, "today")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := svc.EarliestAvailable(r.Context(), serial, today)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, EarliestAvailableResponse{
			SerialNumber:      serial,
			EarliestAvailable: date,
		})
	}
}
