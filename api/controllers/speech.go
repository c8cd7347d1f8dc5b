package controllers

import (
	"net/http"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/api/validators"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

type speechGenerateRequest struct {
	Text  string `json:"text" validate:"required,min=1,max=8000"`
	Voice string `json:"voice" validate:"omitempty,max=64"`
	Model string `json:"model" validate:"omitempty,max=128"`
}

func SpeechGenerate(svc GenerationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body speechGenerateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		job, err := svc.Submit(ctx, generation.Request{
			Subject:  middleware.SubjectFromContext(ctx),
			Resource: enums.MediaTypeAudio,
			Mode:     enums.GenerationModeText,
			Prompt:   validators.SanitizeString(body.Text, 0),
			Model:    body.Model,
			Voice:    body.Voice,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, job)
	}
}
