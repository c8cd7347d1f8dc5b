package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/api/responses"
	"github.com/mvaldez/genstudio-backend/api/validators"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

func MediaList(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		mediaType, err := parseMediaTypeParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		records, err := svc.ListBySubject(ctx, middleware.SubjectFromContext(ctx), mediaType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}

func MediaRecent(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		mediaType, err := parseMediaTypeParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultRecentLimit, 1, maxRecentLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		records, err := svc.ListRecent(ctx, limit, mediaType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}

// MediaGet streams the binary artifact content with its stored mime type.
func MediaGet(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := parseArtifactID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, content, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if record.Subject != middleware.SubjectFromContext(ctx) {
			responses.WriteError(ctx, logg, w, artifactNotFound(id))
			return
		}

		w.Header().Set("Content-Type", record.MimeType)
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", record.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(content); err != nil && logg != nil {
			logg.Error(ctx, "media.write_failed", err)
		}
	}
}

func MediaMetadata(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := parseArtifactID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.GetMetadata(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if record.Subject != middleware.SubjectFromContext(ctx) {
			responses.WriteError(ctx, logg, w, artifactNotFound(id))
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func MediaDelete(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := parseArtifactID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.GetMetadata(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if record.Subject != middleware.SubjectFromContext(ctx) {
			responses.WriteError(ctx, logg, w, artifactNotFound(id))
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"deleted": id.String()})
	}
}

func MediaStats(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stats, err := svc.Stats(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func parseMediaTypeParam(r *http.Request) (*enums.MediaType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("type"))
	if raw == "" {
		return nil, nil
	}
	parsed, err := enums.ParseMediaType(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type query parameter").
			WithDetails(map[string]any{"field": "type"})
	}
	return &parsed, nil
}

func parseArtifactID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "mediaId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media id").
			WithDetails(map[string]any{"field": "mediaId"})
	}
	return id, nil
}

func artifactNotFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("artifact %s not found", id))
}
