package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GenStudio-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency with a short deadline. Nil pingers
// are skipped so the same handler serves deployments without redis or a
// database.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GenStudio-Env", cfg.App.Env)

		checks := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), dependencyPingTimeout)
			err := dep.Ping(ctx)
			cancel()
			if err != nil {
				checks[name] = "unavailable"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s unavailable", name)).
						WithDetails(map[string]any{"dependency": name}))
				return
			}
			checks[name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
