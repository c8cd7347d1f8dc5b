package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/genstudio-backend/api/controllers"
	"github.com/mvaldez/genstudio-backend/internal/artifacts"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/internal/quota"
	pkgAuth "github.com/mvaldez/genstudio-backend/pkg/auth"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubGeneration struct{}

func (stubGeneration) Submit(_ context.Context, req generation.Request) (*models.GenerationJob, error) {
	return &models.GenerationJob{
		ID:       "job_1_abcd1234",
		Subject:  req.Subject,
		Resource: req.Resource,
		Status:   enums.JobStatusCompleted,
	}, nil
}

func (stubGeneration) CheckStatus(_ context.Context, jobID string) (*models.GenerationJob, error) {
	return &models.GenerationJob{ID: jobID, Subject: "user-1", Status: enums.JobStatusProcessing}, nil
}

type stubJobs struct{}

func (stubJobs) Get(_ context.Context, id string) (*models.GenerationJob, error) {
	return &models.GenerationJob{ID: id, Subject: "user-1"}, nil
}

func (stubJobs) ListBySubject(context.Context, string, int) ([]models.GenerationJob, error) {
	return []models.GenerationJob{}, nil
}

type stubMedia struct{}

func (stubMedia) Get(context.Context, uuid.UUID) (*models.MediaArtifact, []byte, error) {
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
}

func (stubMedia) GetMetadata(context.Context, uuid.UUID) (*models.MediaArtifact, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
}

func (stubMedia) ListBySubject(context.Context, string, *enums.MediaType) ([]models.MediaArtifact, error) {
	return []models.MediaArtifact{}, nil
}

func (stubMedia) ListRecent(context.Context, int, *enums.MediaType) ([]models.MediaArtifact, error) {
	return []models.MediaArtifact{}, nil
}

func (stubMedia) Delete(context.Context, uuid.UUID) error { return nil }

func (stubMedia) Stats(context.Context) (*artifacts.Stats, error) {
	return &artifacts.Stats{}, nil
}

type stubQuota struct{}

func (stubQuota) Status(context.Context, string) ([]quota.ResourceUsage, error) {
	return []quota.ResourceUsage{}, nil
}

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "genstudio-test", ExpirationMinutes: 5},
	}
	logg := logger.New(logger.Options{Output: io.Discard})

	handler := NewRouter(cfg, logg, Dependencies{
		Generation: stubGeneration{},
		Jobs:       stubJobs{},
		Media:      stubMedia{},
		Quota:      stubQuota{},
		Pingers:    map[string]controllers.Pinger{"db": stubPinger{}},
	})
	return handler, cfg.JWT
}

func bearerFor(t *testing.T, cfg config.JWTConfig, subject string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), subject)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	handler, _ := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	handler, _ := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/images/generate"},
		{http.MethodPost, "/api/v1/videos/generate"},
		{http.MethodGet, "/api/v1/jobs"},
		{http.MethodGet, "/api/v1/media"},
		{http.MethodGet, "/api/v1/quota"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestGenerateRouteRoundTrip(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generate",
		strings.NewReader(`{"prompt":"a lighthouse at dawn"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtCfg, "user-1"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "job_1_abcd1234")
}

func TestVideoStatusRoute(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/status?jobId=job_9_zzzzzzzz", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtCfg, "user-1"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "processing")
}

func TestQuotaRoute(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quota", nil)
	req.Header.Set("Authorization", bearerFor(t, jwtCfg, "user-1"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
