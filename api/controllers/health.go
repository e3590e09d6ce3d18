package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/cargochainlabs/cargochain-backend/api/responses"
	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is any dependency the readiness probe can check.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CargoChain-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and aggregates the failures,
// so a single probe names everything that is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CargoChain-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var combined error
		status := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				status[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				combined = multierr.Append(combined, fmt.Errorf("%s: %w", name, err))
				continue
			}
			status[name] = "up"
		}

		if combined != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable")
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": status})
	}
}
