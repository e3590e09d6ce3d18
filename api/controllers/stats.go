package controllers

import (
	"net/http"

	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/internal/stats"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

// StatsSummary serves the marketplace snapshot to developer accounts.
func StatsSummary(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summarize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
