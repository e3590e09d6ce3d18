package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cargochainlabs/cargochain-backend/api/middleware"
	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/api/validators"
	"github.com/cargochainlabs/cargochain-backend/internal/spaces"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

type createSpaceBody struct {
	TokenID       string  `json:"token_id" validate:"omitempty,min=6"`
	Source        string  `json:"source" validate:"required"`
	Destination   string  `json:"destination" validate:"required"`
	Length        float64 `json:"length" validate:"required,gt=0"`
	Width         float64 `json:"width" validate:"required,gt=0"`
	Height        float64 `json:"height" validate:"required,gt=0"`
	MaxWeight     float64 `json:"max_weight" validate:"required,gt=0"`
	VehicleType   string  `json:"vehicle_type" validate:"required"`
	DepartureDate string  `json:"departure_date" validate:"required"`
	Price         string  `json:"price" validate:"required"`
}

type updateSpaceStatusBody struct {
	Status string `json:"status" validate:"required,oneof=available partial booked"`
}

// SpaceCreate wires the listing endpoint into the HTTP layer.
func SpaceCreate(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "space service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSpaceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		departure, err := time.Parse("2006-01-02", body.DepartureDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "departure_date must be YYYY-MM-DD"))
			return
		}
		price, err := decimal.NewFromString(body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number"))
			return
		}

		space, err := svc.CreateSpace(r.Context(), spaces.CreateSpaceInput{
			UserID:        middleware.UserIDFromContext(r.Context()),
			TokenID:       body.TokenID,
			Source:        body.Source,
			Destination:   body.Destination,
			Length:        body.Length,
			Width:         body.Width,
			Height:        body.Height,
			MaxWeight:     body.MaxWeight,
			VehicleType:   body.VehicleType,
			DepartureDate: departure,
			Price:         price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, space)
	}
}

// SpaceList returns every listing, or only the caller's with ?mine=true.
func SpaceList(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "space service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if r.URL.Query().Get("mine") == "true" {
			rows, err := svc.ListByOwner(r.Context(), middleware.UserIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
			return
		}

		rows, err := svc.ListSpaces(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SpaceSearch filters listings by source and destination substrings.
func SpaceSearch(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "space service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		rows, err := svc.SearchSpaces(r.Context(), query.Get("source"), query.Get("destination"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SpaceGet returns a single listing by id.
func SpaceGet(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "space service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.IDParam(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		space, err := svc.GetSpace(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, space)
	}
}

// SpaceUpdateStatus adjusts a listing's availability.
func SpaceUpdateStatus(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "space service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.IDParam(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSpaceStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseSpaceStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		space, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, space)
	}
}
