package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/api/validators"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

type imageGenerateRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=4000"`
	Model  string `json:"model" validate:"omitempty,max=128"`
}

type imageEditRequest struct {
	Prompt      string `json:"prompt" validate:"required,min=1,max=4000"`
	Model       string `json:"model" validate:"omitempty,max=128"`
	ImageBase64 string `json:"imageBase64" validate:"required"`
	ImageMime   string `json:"imageMime" validate:"omitempty,max=64"`
}

func ImageGenerate(svc GenerationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body imageGenerateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		job, err := svc.Submit(ctx, generation.Request{
			Subject:  middleware.SubjectFromContext(ctx),
			Resource: enums.MediaTypeImage,
			Mode:     enums.GenerationModeText,
			Prompt:   validators.SanitizeString(body.Prompt, 0),
			Model:    body.Model,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, job)
	}
}

func ImageEdit(svc GenerationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body imageEditRequest
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
			Resource:        enums.MediaTypeImage,
			Mode:            enums.GenerationModeEdit,
			Prompt:          validators.SanitizeString(body.Prompt, 0),
			Model:           body.Model,
			SourceImage:     source,
			SourceImageMime: body.ImageMime,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, job)
	}
}

func decodeInlineImage(encoded string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "imageBase64 is not valid base64")
	}
	if len(decoded) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "imageBase64 decoded to empty content")
	}
	return decoded, nil
}
