package controllers

import (
	"net/http"

	"github.com/rvellora/stockline-backend/api/responses"
	"github.com/rvellora/stockline-backend/pkg/config"
	"github.com/rvellora/stockline-backend/pkg/db"
	pkgerrors "github.com/rvellora/stockline-backend/pkg/errors"
	"github.com/rvellora/stockline-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores and reports per-dependency status.
// Any failed ping degrades the response to 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockline-Env", cfg.App.Env)

		checks := map[string]string{
			"db":    checkPinger(r, logg, "db", dbP),
			"redis": checkPinger(r, logg, "redis", redisP),
		}

		for _, status := range checks {
			if status != "ok" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeDependency, "service dependencies unavailable").WithDetails(checks))
				return
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkPinger(r *http.Request, logg *logger.Logger, name string, p db.Pinger) string {
	if p == nil {
		return "missing"
	}
	if err := p.Ping(r.Context()); err != nil {
		if logg != nil {
			ctx := logg.WithField(r.Context(), "dependency", name)
			logg.Error(ctx, "health.ready dependency ping failed", err)
		}
		return "down"
	}
	return "ok"
}
