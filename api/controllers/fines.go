package controllers

import (
	"net/http"

	"github.com/campusshelf/library-backend/api/responses"
	"github.com/campusshelf/library-backend/api/validators"
	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/internal/settings"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fineConfigBody struct {
	FineAmount *types.Money `json:"fineAmount" validate:"required"`
	UpdatedBy  *string      `json:"updatedBy" validate:"omitempty,uuid"`
}

type fineRecalcBody struct {
	FineAmount *types.Money `json:"fineAmount"`
}

type fineConfigResponse struct {
	Success    bool        `json:"success"`
	FineAmount types.Money `json:"fineAmount"`
	Message    string      `json:"message,omitempty"`
}

// AdminGetFineConfig returns the current daily fine.
func AdminGetFineConfig(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		rate, err := svc.DailyFineRate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fineConfigResponse{Success: true, FineAmount: types.NewMoney(rate)})
	}
}

// AdminSetFineConfig stores a new daily fine. updatedBy defaults to the caller.
func AdminSetFineConfig(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body fineConfigBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updatedBy := actor.ID
		if body.UpdatedBy != nil {
			if updatedBy, err = uuid.Parse(*body.UpdatedBy); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid updatedBy"))
				return
			}
		}

		rate, err := svc.SetDailyFineRate(r.Context(), body.FineAmount.Decimal, &updatedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "fine_amount", rate.StringFixed(2)), "daily fine updated")
		}
		responses.WriteSuccess(w, fineConfigResponse{
			Success:    true,
			FineAmount: types.NewMoney(rate),
			Message:    "Fine amount updated successfully",
		})
	}
}

// AdminRecalculateFines recomputes every overdue fine, optionally at an override rate.
func AdminRecalculateFines(svc borrows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "borrow service unavailable"))
			return
		}

		var body fineRecalcBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var override *decimal.Decimal
		if body.FineAmount != nil {
			rate := body.FineAmount.Decimal
			override = &rate
		}

		results, err := svc.RecalculateOverdueFines(r.Context(), override)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if results == nil {
			results = []borrows.FineRecalculation{}
		}
		responses.WriteSuccess(w, results)
	}
}
