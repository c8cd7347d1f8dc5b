package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/api/validators"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 200
)

func JobList(jobStore JobReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", defaultJobListLimit, 1, maxJobListLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		jobs, err := jobStore.ListBySubject(ctx, middleware.SubjectFromContext(ctx), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, jobs)
	}
}

func JobDetail(jobStore JobReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		jobID := chi.URLParam(r, "jobId")
		job, err := jobStore.Get(ctx, jobID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// Other subjects' jobs are indistinguishable from absent ones.
		if job.Subject != middleware.SubjectFromContext(ctx) {
			responses.WriteError(ctx, logg, w, jobNotFound(jobID))
			return
		}

		responses.WriteSuccess(w, job)
	}
}

func jobNotFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("job %s not found", id))
}
