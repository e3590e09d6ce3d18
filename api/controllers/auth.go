package controllers

import (
	"net/http"

	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/api/validators"
	"github.com/cargochainlabs/cargochain-backend/internal/auth"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

type registerBody struct {
	Username      string  `json:"username" validate:"required,min=3,max=64"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8,max=128"`
	Role          string  `json:"role" validate:"omitempty,oneof=user logistics developer"`
	WalletAddress *string `json:"wallet_address" validate:"omitempty,min=6"`
}

type loginBody struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type walletLoginBody struct {
	WalletAddress string `json:"wallet_address" validate:"required,min=6"`
}

// AuthRegister wires the registration endpoint into the HTTP layer.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.UserRoleUser
		if body.Role != "" {
			parsed, err := enums.ParseUserRole(body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			role = parsed
		}

		result, err := svc.Register(r.Context(), auth.RegisterRequest{
			Username:      body.Username,
			Email:         body.Email,
			Password:      body.Password,
			Role:          role,
			WalletAddress: body.WalletAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin wires the password login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body loginBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{
			Identifier: body.Identifier,
			Password:   body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthWalletLogin wires the wallet login endpoint into the HTTP layer.
func AuthWalletLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body walletLoginBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.WalletLogin(r.Context(), auth.WalletLoginRequest{
			WalletAddress: body.WalletAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
