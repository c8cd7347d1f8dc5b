package controllers

import (
	"net/http"
	"strings"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/api/validators"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

type videoGenerateRequest struct {
	Prompt         string `json:"prompt" validate:"required,min=1,max=4000"`
	Model          string `json:"model" validate:"omitempty,max=128"`
	NegativePrompt string `json:"negativePrompt" validate:"omitempty,max=4000"`
	AspectRatio    string `json:"aspectRatio" validate:"omitempty,oneof=16:9 9:16 1:1"`
}

type videoAnimateRequest struct {
	Prompt         string `json:"prompt" validate:"required,min=1,max=4000"`
	Model          string `json:"model" validate:"omitempty,max=128"`
	ImageBase64    string `json:"imageBase64" validate:"required"`
	ImageMime      string `json:"imageMime" validate:"omitempty,max=64"`
	NegativePrompt string `json:"negativePrompt" validate:"omitempty,max=4000"`
	AspectRatio    string `json:"aspectRatio" validate:"omitempty,oneof=16:9 9:16 1:1"`
}

func VideoGenerate(svc GenerationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body videoGenerateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		job, err := svc.Submit(ctx, generation.Request{
			Subject:        middleware.SubjectFromContext(ctx),
			Resource:       enums.MediaTypeVideo,
			Mode:           enums.GenerationModeText,
			Prompt:         validators.SanitizeString(body.Prompt, 0),
			Model:          body.Model,
			NegativePrompt: body.NegativePrompt,
			AspectRatio:    body.AspectRatio,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, job)
	}
}

func VideoAnimate(svc GenerationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body videoAnimateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		source, err := decodeInlineImage(body.ImageBase64)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		job, err := svc.Submit(ctx, generation.Request{
			Subject:         middleware.SubjectFromContext(ctx),
			Resource:        enums.MediaTypeVideo,
			Mode:            enums.GenerationModeAnimate,
			Prompt:          validators.SanitizeString(body.Prompt, 0),
			Model:           body.Model,
			SourceImage:     source,
			SourceImageMime: body.ImageMime,
			NegativePrompt:  body.NegativePrompt,
			AspectRatio:     body.AspectRatio,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, job)
	}
}

// VideoStatus drives one poll of the long-running operation behind a job.
// Callers poll repeatedly; nothing server-side counts attempts. Ownership is
// checked before the provider is contacted.
func VideoStatus(svc GenerationService, jobStore JobReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		jobID := strings.TrimSpace(r.URL.Query().Get("jobId"))
		if jobID == "" {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "jobId query parameter is required"))
			return
		}

		owned, err := jobStore.Get(ctx, jobID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if owned.Subject != middleware.SubjectFromContext(ctx) {
			responses.WriteError(ctx, logg, w, jobNotFound(jobID))
			return
		}

		job, err := svc.CheckStatus(ctx, jobID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, job)
	}
}
