package controllers

import (
	"net/http"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

func QuotaStatus(svc QuotaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		usage, err := svc.Status(ctx, middleware.SubjectFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, usage)
	}
}
