package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MedReg-Intelligence/internal/application/approval"
	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	"github.com/turtacn/MedReg-Intelligence/internal/application/entitymap"
	"github.com/turtacn/MedReg-Intelligence/internal/application/legal"
	"github.com/turtacn/MedReg-Intelligence/internal/application/timeline"
	"github.com/turtacn/MedReg-Intelligence/internal/application/trends"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

type mockEngine struct {
	mapFn      func(ctx context.Context) ([]entitymap.EntityMapping, error)
	timelineFn func(ctx context.Context, recordID string) (*timeline.Timeline, error)
	legalFn    func(ctx context.Context) (*legal.Analysis, error)
	evalRegFn  func(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict
	evalLegFn  func(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict
	trendsFn   func(ctx context.Context, windowDays int) (*trends.Report, error)
	allFn      func(ctx context.Context) (*engine.FullAnalysis, error)
}

func (m *mockEngine) MapDevicesAcrossJurisdictions(ctx context.Context) ([]entitymap.EntityMapping, error) {
	return m.mapFn(ctx)
}
func (m *mockEngine) BuildTimeline(ctx context.Context, recordID string) (*timeline.Timeline, error) {
	return m.timelineFn(ctx, recordID)
}
func (m *mockEngine) AnalyzeLegalCorpus(ctx context.Context) (*legal.Analysis, error) {
	return m.legalFn(ctx)
}
func (m *mockEngine) EvaluateRegulatoryUpdate(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict {
	return m.evalRegFn(ctx, dto)
}
func (m *mockEngine) EvaluateLegalCase(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict {
	return m.evalLegFn(ctx, dto)
}
func (m *mockEngine) AnalyzeTrends(ctx context.Context, windowDays int) (*trends.Report, error) {
	return m.trendsFn(ctx, windowDays)
}
func (m *mockEngine) AnalyzeAll(ctx context.Context) (*engine.FullAnalysis, error) {
	return m.allFn(ctx)
}

func newTestRouter(eng engine.Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnalysisHandler(eng, nil)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, r http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestMapDevicesEndpoint(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{
		mapFn: func(context.Context) ([]entitymap.EntityMapping, error) {
			return []entitymap.EntityMapping{
				{PrimaryID: "eu-1", RelatedIDs: []string{"us-1"}, MappingBasis: entitymap.BasisManufacturer, Confidence: 0.9},
			}, nil
		},
	}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/analysis/device-mappings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var mappings []entitymap.EntityMapping
	require.NoError(t, json.Unmarshal(env.Data, &mappings))
	require.Len(t, mappings, 1)
	assert.Equal(t, "eu-1", mappings[0].PrimaryID)
}

func TestMapDevicesEndpointError(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{
		mapFn: func(context.Context) ([]entitymap.EntityMapping, error) {
			return nil, errors.New(errors.ErrCodeSnapshotFailed, "snapshot failed")
		},
	}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/analysis/device-mappings", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REC_004", env.Error.Code)
}

func TestTimelineEndpoint(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{
		timelineFn: func(_ context.Context, recordID string) (*timeline.Timeline, error) {
			if recordID != "us-1" {
				return nil, nil
			}
			return &timeline.Timeline{RecordID: "us-1", DeviceName: "cardiac stent system"}, nil
		},
	}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodGet, "/api/v1/analysis/timeline/us-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tl timeline.Timeline
	require.NoError(t, json.Unmarshal(env.Data, &tl))
	assert.Equal(t, "us-1", tl.RecordID)
}

func TestTimelineEndpointNotFound(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{
		timelineFn: func(context.Context, string) (*timeline.Timeline, error) {
			return nil, nil
		},
	}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodGet, "/api/v1/analysis/timeline/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REC_001", env.Error.Code)
}

func TestLegalCorpusEndpoint(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{
		legalFn: func(context.Context) (*legal.Analysis, error) {
			return &legal.Analysis{}, nil
		},
	}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/analysis/legal-corpus", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestEvaluateEndpointRoutesByType(t *testing.T) {
	t.Parallel()

	var evaluatedLegal, evaluatedReg bool
	eng := &mockEngine{
		evalRegFn: func(_ context.Context, dto rtypes.RecordDTO) approval.Verdict {
			evaluatedReg = true
			return approval.Verdict{RecordID: dto.ID, ReviewLevel: approval.ReviewSenior}
		},
		evalLegFn: func(_ context.Context, dto rtypes.RecordDTO) approval.Verdict {
			evaluatedLegal = true
			return approval.Verdict{RecordID: dto.ID, ReviewLevel: approval.ReviewExpert}
		},
	}
	r := newTestRouter(eng)

	legalBody, _ := json.Marshal(rtypes.RecordDTO{
		ID: "case-1", Title: "Doe v. MedCore", Authority: "US Courts", Region: "US",
		PublishedAt: time.Now().UTC(), RecordType: rtypes.TypeLegalCase,
	})
	rec, _ := doRequest(t, r, http.MethodPost, "/api/v1/analysis/evaluate", legalBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, evaluatedLegal)
	assert.False(t, evaluatedReg)

	regBody, _ := json.Marshal(rtypes.RecordDTO{
		ID: "us-1", Title: "FDA Clears Stent", Authority: "FDA", Region: "US",
		PublishedAt: time.Now().UTC(), RecordType: rtypes.TypeRegulatoryUpdate,
	})
	rec, _ = doRequest(t, r, http.MethodPost, "/api/v1/analysis/evaluate", regBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, evaluatedReg)
}

func TestEvaluateEndpointRejectsBadJSON(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/analysis/evaluate", []byte("{not json"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
}

func TestTrendsEndpoint(t *testing.T) {
	t.Parallel()

	var gotWindow int
	eng := &mockEngine{
		trendsFn: func(_ context.Context, windowDays int) (*trends.Report, error) {
			gotWindow = windowDays
			return &trends.Report{WindowDays: windowDays}, nil
		},
	}
	r := newTestRouter(eng)

	rec, _ := doRequest(t, r, http.MethodGet, "/api/v1/analysis/trends?window_days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, gotWindow)

	// Defaults pass through as zero for the engine to resolve.
	rec, _ = doRequest(t, r, http.MethodGet, "/api/v1/analysis/trends", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, gotWindow)
}

func TestTrendsEndpointValidatesWindow(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockEngine{})
	rec, _ := doRequest(t, r, http.MethodGet, "/api/v1/analysis/trends?window_days=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeAllEndpoint(t *testing.T) {
	t.Parallel()

	eng := &mockEngine{
		allFn: func(context.Context) (*engine.FullAnalysis, error) {
			return &engine.FullAnalysis{GeneratedAt: time.Now().UTC()}, nil
		},
	}
	r := newTestRouter(eng)

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/analysis/full", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}
