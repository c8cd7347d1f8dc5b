package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvaldez/genstudio-backend/internal/quota"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

func TestQuotaStatusReturnsUsage(t *testing.T) {
	svc := &stubQuota{usage: []quota.ResourceUsage{
		{
			Resource:    enums.MediaTypeImage,
			HourlyUsed:  3,
			HourlyLimit: 10,
			DailyUsed:   3,
			DailyLimit:  100,
			Remaining:   7,
			ResetAt:     time.Now().Add(30 * time.Minute),
		},
	}}

	rec := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodGet, "/api/v1/quota", "user-1", nil)
	QuotaStatus(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var usage []quota.ResourceUsage
	decodeData(t, rec, &usage)
	require.Len(t, usage, 1)
	require.Equal(t, enums.MediaTypeImage, usage[0].Resource)
	require.Equal(t, int64(7), usage[0].Remaining)
}

func TestQuotaStatusMapsBackendFailure(t *testing.T) {
	svc := &stubQuota{err: pkgerrors.New(pkgerrors.CodeDependency, "counter store unavailable")}

	rec := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodGet, "/api/v1/quota", "user-1", nil)
	QuotaStatus(svc, nil)(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
