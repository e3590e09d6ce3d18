package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/api/validators"
	"github.com/cargochainlabs/cargochain-backend/internal/tracking"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

type appendTrackingBody struct {
	EventType string          `json:"event_type" validate:"required"`
	Location  string          `json:"location" validate:"omitempty,max=256"`
	Latitude  float64         `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude float64         `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Status    string          `json:"status" validate:"omitempty,max=64"`
	Message   string          `json:"message" validate:"omitempty,max=512"`
	Details   json.RawMessage `json:"details" validate:"omitempty"`
	Timestamp string          `json:"timestamp" validate:"omitempty"`
}

// TrackingAppend records a checkpoint for a shipment.
func TrackingAppend(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipmentID, err := validators.IDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body appendTrackingBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var timestamp time.Time
		if body.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, body.Timestamp)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "timestamp must be RFC3339"))
				return
			}
			timestamp = parsed
		}

		event, err := svc.AppendEvent(r.Context(), tracking.AppendEventInput{
			ShipmentID: shipmentID,
			EventType:  body.EventType,
			Location:   body.Location,
			Latitude:   body.Latitude,
			Longitude:  body.Longitude,
			Status:     body.Status,
			Message:    body.Message,
			Details:    body.Details,
			Timestamp:  timestamp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

// TrackingList returns a shipment's full history, oldest first.
func TrackingList(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "tracking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipmentID, err := validators.IDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.ListEvents(r.Context(), shipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}
