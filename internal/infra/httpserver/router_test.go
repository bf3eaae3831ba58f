package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/chartsight/internal/application/analyses"
	domai "github.com/bryanwahyu/chartsight/internal/domain/ai"
	"github.com/bryanwahyu/chartsight/internal/domain/analysis"
	"github.com/bryanwahyu/chartsight/internal/infra/ai/stub"
	"github.com/bryanwahyu/chartsight/internal/infra/history/file"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type errVision struct{ err error }

func (v errVision) Analyze(ctx context.Context, prompt, imageDataURI string) (string, error) {
	return "", v.err
}

type textVision struct{ raw string }

func (v textVision) Analyze(ctx context.Context, prompt, imageDataURI string) (string, error) {
	return v.raw, nil
}

// Each test builds its own router: the rate limiter allows a burst of ten
// requests per client, so tests stay well under that.
func newTestRouter(t *testing.T, vision domai.Client) http.Handler {
	t.Helper()
	store, err := file.Open(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	svc := &analyses.Service{
		History: store,
		Samples: analysis.Samples(),
		Vision:  vision,
		Clock:   fixedClock{t: time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)},
		Log:     zerolog.Nop(),
	}
	return NewRouter(svc, zerolog.Nop(), nil)
}

func analyzeBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}),
		"media_type":   "png",
		"image_uri":    "file:///captures/chart.png",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAnalyzeEndpointHappyPath(t *testing.T) {
	h := newTestRouter(t, stub.New())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", analyzeBody(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Analysis analysis.Analysis `json:"analysis"`
		Saved    bool              `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Saved)
	assert.NotEmpty(t, resp.Analysis.ID)
	assert.Len(t, resp.Analysis.DetailedAnalysis, 5)

	// The record is now retrievable by id.
	req = httptest.NewRequest(http.MethodGet, "/v1/analyses/"+string(resp.Analysis.ID), nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeEndpointBadMediaType(t *testing.T) {
	h := newTestRouter(t, stub.New())

	body, _ := json.Marshal(map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString([]byte{1}),
		"media_type":   "tiff",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpointUnparsableResponse(t *testing.T) {
	h := newTestRouter(t, textVision{raw: "the chart looks bullish to me"})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", analyzeBody(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the chart looks bullish to me", resp["raw"], "raw model text rides along for debugging")
}

func TestAnalyzeEndpointUpstreamFailure(t *testing.T) {
	h := newTestRouter(t, errVision{err: &domai.RequestError{
		StatusCode: 503,
		Body:       "upstream down",
		Err:        errors.New("503"),
	}})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", analyzeBody(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(503), resp["upstream_status"])
	assert.Equal(t, true, resp["retryable"])
}

func TestAnalyzeEndpointQuotaExceeded(t *testing.T) {
	h := newTestRouter(t, errVision{err: domai.ErrQuotaExceeded})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", analyzeBody(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGetEndpointUnknownID(t *testing.T) {
	h := newTestRouter(t, stub.New())

	req := httptest.NewRequest(http.MethodGet, "/v1/analyses/does-not-exist", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndClearEndpoints(t *testing.T) {
	h := newTestRouter(t, stub.New())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", analyzeBody(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*analysis.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1+len(analysis.Samples()), "user record plus shipped samples")

	req = httptest.NewRequest(http.MethodDelete, "/v1/analyses", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, len(analysis.Samples()), "samples survive the clear")
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t, stub.New())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
