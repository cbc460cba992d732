package in_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	heatin "pursue/internal/modules/heat/adapter/in"
	"pursue/internal/modules/heat/dto"
	apperrors "pursue/internal/platform/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsecase struct {
	batchCalls int
	batchInput dto.BatchInput
	history    func(dto.HistoryInput) (dto.HistoryOutput, error)
}

func (s *stubUsecase) RunBatch(_ context.Context, input dto.BatchInput) (dto.BatchOutput, error) {
	s.batchCalls++
	s.batchInput = input
	return dto.BatchOutput{Success: true, Date: "2026-03-02", RunID: "run-1"}, nil
}

func (s *stubUsecase) CalculateGroup(context.Context, dto.CalculateInput) (dto.CalculateOutput, error) {
	return dto.CalculateOutput{}, nil
}

func (s *stubUsecase) InitGroup(context.Context, dto.InitGroupInput) error { return nil }

func (s *stubUsecase) Summary(_ context.Context, groupID string) (dto.Summary, error) {
	if groupID != "g1" {
		return dto.Summary{}, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	return dto.Summary{Score: 42, Tier: 3, TierName: "Flicker"}, nil
}

func (s *stubUsecase) History(_ context.Context, input dto.HistoryInput) (dto.HistoryOutput, error) {
	return s.history(input)
}

func (s *stubUsecase) Board(context.Context) ([]dto.BoardEntry, error) { return nil, nil }

func newRouter(uc *stubUsecase) http.Handler {
	return heatin.NewHTTPHandler(uc, "s3cret", prometheus.NewRegistry(), nil).Router()
}

func do(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBatchEndpointRequiresJobKey(t *testing.T) {
	t.Parallel()
	uc := &stubUsecase{}
	router := newRouter(uc)

	rec := do(t, router, http.MethodPost, "/internal/jobs/heat", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, router, http.MethodPost, "/internal/jobs/heat", map[string]string{heatin.JobKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, uc.batchCalls, "engine must not run without a valid key")
}

func TestBatchEndpointEmptyDataset(t *testing.T) {
	t.Parallel()
	uc := &stubUsecase{}
	rec := do(t, newRouter(uc), http.MethodPost, "/internal/jobs/heat", map[string]string{heatin.JobKeyHeader: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["processed"])
	assert.Equal(t, float64(0), body["errors"])
	assert.Nil(t, uc.batchInput.Date)
}

func TestBatchEndpointDateOverride(t *testing.T) {
	t.Parallel()
	uc := &stubUsecase{}
	router := newRouter(uc)
	rec := do(t, router, http.MethodPost, "/internal/jobs/heat?date=2026-02-14", map[string]string{heatin.JobKeyHeader: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.batchInput.Date)
	assert.Equal(t, "2026-02-14", uc.batchInput.Date.Format("2006-01-02"))

	rec = do(t, router, http.MethodPost, "/internal/jobs/heat?date=yesterday", map[string]string{heatin.JobKeyHeader: "s3cret"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchEndpointDisabledWithoutConfiguredKey(t *testing.T) {
	t.Parallel()
	router := heatin.NewHTTPHandler(&stubUsecase{}, "", nil, nil).Router()
	rec := do(t, router, http.MethodPost, "/internal/jobs/heat", map[string]string{heatin.JobKeyHeader: ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	t.Parallel()
	uc := &stubUsecase{history: func(in dto.HistoryInput) (dto.HistoryOutput, error) {
		switch in.CallerID {
		case "free":
			return dto.HistoryOutput{Current: dto.CurrentView{Score: 42, Tier: 3, TierName: "Flicker"}, PremiumRequired: true}, nil
		case "paid":
			return dto.HistoryOutput{
				Current: dto.CurrentView{Score: 42, Tier: 3, TierName: "Flicker"},
				History: []dto.HistoryPoint{{Date: "2026-03-02", Score: 42, Tier: 3, GCR: 0.5}},
				Stats:   &dto.StatsView{PeakScore: 55},
			}, nil
		case "outsider":
			return dto.HistoryOutput{}, apperrors.ErrForbidden
		default:
			return dto.HistoryOutput{}, apperrors.ErrNotFound
		}
	}}
	router := newRouter(uc)

	rec := do(t, router, http.MethodGet, "/groups/g1/heat/history", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, days := range []string{"0", "-1", "91", "abc"} {
		rec = do(t, router, http.MethodGet, "/groups/g1/heat/history?days="+days, map[string]string{heatin.UserIDHeader: "paid"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
	}

	rec = do(t, router, http.MethodGet, "/groups/g1/heat/history", map[string]string{heatin.UserIDHeader: "outsider"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, router, http.MethodGet, "/groups/nope/heat/history", map[string]string{heatin.UserIDHeader: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/groups/g1/heat/history?days=7", map[string]string{heatin.UserIDHeader: "free"})
	require.Equal(t, http.StatusOK, rec.Code)
	var free map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &free))
	assert.Equal(t, true, free["premium_required"])
	assert.Nil(t, free["history"])
	assert.Nil(t, free["stats"])
	assert.NotNil(t, free["current"])

	rec = do(t, router, http.MethodGet, "/groups/g1/heat/history?days=7", map[string]string{heatin.UserIDHeader: "paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	var paid dto.HistoryOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.False(t, paid.PremiumRequired)
	assert.Len(t, paid.History, 1)
	require.NotNil(t, paid.Stats)
	assert.Equal(t, 55.0, paid.Stats.PeakScore)
}

func TestSummaryHealthAndMetrics(t *testing.T) {
	t.Parallel()
	router := newRouter(&stubUsecase{})

	rec := do(t, router, http.MethodGet, "/groups/g1/heat", map[string]string{heatin.UserIDHeader: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tier_name":"Flicker"`)

	rec = do(t, router, http.MethodGet, "/groups/missing/heat", map[string]string{heatin.UserIDHeader: "u1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoryDaysOnlyDefaultsWhenAbsent(t *testing.T) {
	t.Parallel()
	var seen []int
	uc := &stubUsecase{history: func(in dto.HistoryInput) (dto.HistoryOutput, error) {
		seen = append(seen, in.Days)
		return dto.HistoryOutput{PremiumRequired: true}, nil
	}}
	router := newRouter(uc)
	headers := map[string]string{heatin.UserIDHeader: "paid"}

	rec := do(t, router, http.MethodGet, "/groups/g1/heat/history", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/groups/g1/heat/history?days=1", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/groups/g1/heat/history?days=0", headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []int{0, 1}, seen)
}
