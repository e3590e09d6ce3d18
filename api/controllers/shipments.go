package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/cargochainlabs/cargochain-backend/api/middleware"
	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/api/validators"
	"github.com/cargochainlabs/cargochain-backend/internal/booking"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

type createShipmentBody struct {
	LogisticsSpaceID   int64           `json:"logistics_space_id" validate:"required,gt=0"`
	GoodsType          string          `json:"goods_type" validate:"required"`
	Weight             float64         `json:"weight" validate:"required,gt=0"`
	Length             float64         `json:"length" validate:"required,gt=0"`
	Width              float64         `json:"width" validate:"required,gt=0"`
	Height             float64         `json:"height" validate:"required,gt=0"`
	AdditionalServices json.RawMessage `json:"additional_services" validate:"omitempty"`
}

type updateShipmentStatusBody struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in_transit delivered"`
}

// ShipmentCreate books a space for the authenticated shipper.
func ShipmentCreate(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createShipmentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.CreateShipment(r.Context(), booking.CreateShipmentInput{
			LogisticsSpaceID:   body.LogisticsSpaceID,
			UserID:             middleware.UserIDFromContext(r.Context()),
			GoodsType:          body.GoodsType,
			Weight:             body.Weight,
			Length:             body.Length,
			Width:              body.Width,
			Height:             body.Height,
			AdditionalServices: body.AdditionalServices,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, shipment)
	}
}

// ShipmentList returns the caller's shipments.
func ShipmentList(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListShipmentsByUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ShipmentGet returns a single shipment by id.
func ShipmentGet(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.IDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.GetShipment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

// ShipmentUpdateStatus advances a shipment's lifecycle.
func ShipmentUpdateStatus(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.IDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateShipmentStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseShipmentStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		shipment, err := svc.UpdateShipmentStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}
