package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/internal/artifacts"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/internal/quota"
	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/types"
)

type stubGeneration struct {
	submitted  []generation.Request
	submitJob  *models.GenerationJob
	submitErr  error
	checked    []string
	checkJob   *models.GenerationJob
	checkErr   error
}

func (s *stubGeneration) Submit(_ context.Context, req generation.Request) (*models.GenerationJob, error) {
	s.submitted = append(s.submitted, req)
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.submitJob, nil
}

func (s *stubGeneration) CheckStatus(_ context.Context, jobID string) (*models.GenerationJob, error) {
	s.checked = append(s.checked, jobID)
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	return s.checkJob, nil
}

type stubJobReader struct {
	jobs map[string]*models.GenerationJob
	list []models.GenerationJob
}

func (s *stubJobReader) Get(_ context.Context, id string) (*models.GenerationJob, error) {
	if job, ok := s.jobs[id]; ok {
		return job, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job "+id+" not found")
}

func (s *stubJobReader) ListBySubject(_ context.Context, subject string, limit int) ([]models.GenerationJob, error) {
	out := []models.GenerationJob{}
	for _, job := range s.list {
		if job.Subject == subject && len(out) < limit {
			out = append(out, job)
		}
	}
	return out, nil
}

type stubMedia struct {
	records map[uuid.UUID]*models.MediaArtifact
	content map[uuid.UUID][]byte
	deleted []uuid.UUID
	stats   *artifacts.Stats
}

func newStubMedia() *stubMedia {
	return &stubMedia{
		records: map[uuid.UUID]*models.MediaArtifact{},
		content: map[uuid.UUID][]byte{},
	}
}

func (s *stubMedia) Get(_ context.Context, id uuid.UUID) (*models.MediaArtifact, []byte, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
	}
	return record, s.content[id], nil
}

func (s *stubMedia) GetMetadata(_ context.Context, id uuid.UUID) (*models.MediaArtifact, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
	}
	return record, nil
}

func (s *stubMedia) ListBySubject(_ context.Context, subject string, mediaType *enums.MediaType) ([]models.MediaArtifact, error) {
	out := []models.MediaArtifact{}
	for _, record := range s.records {
		if record.Subject != subject {
			continue
		}
		if mediaType != nil && record.Type != *mediaType {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (s *stubMedia) ListRecent(_ context.Context, limit int, mediaType *enums.MediaType) ([]models.MediaArtifact, error) {
	out := []models.MediaArtifact{}
	for _, record := range s.records {
		if mediaType != nil && record.Type != *mediaType {
			continue
		}
		if len(out) < limit {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (s *stubMedia) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.records, id)
	delete(s.content, id)
	return nil
}

func (s *stubMedia) Stats(_ context.Context) (*artifacts.Stats, error) {
	if s.stats != nil {
		return s.stats, nil
	}
	return &artifacts.Stats{}, nil
}

type stubQuota struct {
	usage []quota.ResourceUsage
	err   error
}

func (s *stubQuota) Status(_ context.Context, _ string) ([]quota.ResourceUsage, error) {
	return s.usage, s.err
}

func jsonRequest(t *testing.T, method, target, subject string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req = req.WithContext(middleware.WithSubject(req.Context(), subject))
	}
	return req
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error
}
