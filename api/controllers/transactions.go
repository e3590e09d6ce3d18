package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cargochainlabs/cargochain-backend/api/middleware"
	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/api/validators"
	"github.com/cargochainlabs/cargochain-backend/internal/booking"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

type createTransactionBody struct {
	ShipmentID     int64           `json:"shipment_id" validate:"required,gt=0"`
	Amount         string          `json:"amount" validate:"required"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod  string          `json:"payment_method" validate:"required,oneof=metamask upi card"`
	PaymentDetails json.RawMessage `json:"payment_details" validate:"omitempty"`
}

type confirmTransactionBody struct {
	BlockchainTxHash string `json:"blockchain_tx_hash" validate:"required,min=4"`
}

// TransactionCreate attaches a pending payment to a shipment.
func TransactionCreate(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTransactionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal number"))
			return
		}
		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		txn, err := svc.CreateTransaction(r.Context(), booking.CreateTransactionInput{
			ShipmentID:     body.ShipmentID,
			UserID:         middleware.UserIDFromContext(r.Context()),
			Amount:         amount,
			Currency:       body.Currency,
			PaymentMethod:  method,
			PaymentDetails: body.PaymentDetails,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// TransactionGet returns a single transaction by id.
func TransactionGet(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.IDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.GetTransaction(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// TransactionGetByShipment returns the payment attached to a shipment.
func TransactionGetByShipment(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipmentID, err := validators.IDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.GetTransactionByShipment(r.Context(), shipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// TransactionConfirm settles a pending payment and cascades the
// shipment confirmation.
func TransactionConfirm(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.IDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body confirmTransactionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.ConfirmTransaction(r.Context(), id, body.BlockchainTxHash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}
