package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/chartsight/internal/application/analyses"
	domai "github.com/bryanwahyu/chartsight/internal/domain/ai"
	"github.com/bryanwahyu/chartsight/internal/domain/analysis"
	"github.com/bryanwahyu/chartsight/internal/domain/faults"
	"github.com/bryanwahyu/chartsight/internal/infra/ai/prompt"
	"github.com/bryanwahyu/chartsight/internal/middleware"
)

type Router struct {
	svc *analyses.Service
}

// NewRouter wires the HTTP surface for the analysis pipeline. CORS is open
// to any origin: the caller is the mobile app, which ships with no stable
// origin of its own.
func NewRouter(svc *analyses.Service, log zerolog.Logger, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(middleware.Logging(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.RateLimitMiddleware(10, 1))

	mux.Get("/health", middleware.HealthHandler(checkers))

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleAnalyze))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Delete("/analyses", r.wrap(r.handleClear))
		rt.Get("/faults", r.wrap(r.handleFaults))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap funnels every handler error through one taxonomy-to-status mapping.
// Raw diagnostic payloads ride along in the response body on purpose: a bad
// model round must be debuggable from the client alone.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		switch {
		case errors.Is(err, analysis.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found", nil)
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "ai quota exceeded", nil)
		case errors.Is(err, domai.ErrMissingAPIKey):
			writeError(w, http.StatusInternalServerError, "server is missing its AI credential (set OPENAI_API_KEY)", nil)
		case errors.Is(err, analyses.ErrEmptyImage),
			errors.Is(err, analyses.ErrBadMediaType),
			errors.Is(err, analyses.ErrBadContract):
			writeError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			var reqErr *domai.RequestError
			var parseErr *analysis.UnparsableError
			switch {
			case errors.As(err, &reqErr):
				writeError(w, http.StatusBadGateway, err.Error(), map[string]any{
					"upstream_status": reqErr.StatusCode,
					"upstream_body":   reqErr.Body,
					"retryable":       reqErr.Retryable(),
				})
			case errors.As(err, &parseErr):
				writeError(w, http.StatusUnprocessableEntity, "model response contained no parsable JSON object", map[string]any{
					"raw": parseErr.Raw,
				})
			default:
				writeError(w, http.StatusInternalServerError, err.Error(), nil)
			}
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string, detail map[string]any) {
	body := map[string]any{"error": msg}
	for k, v := range detail {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// POST /v1/analyses
// Body: {"image_base64": "...", "media_type": "png", "image_uri": "...", "contract": "ict"|"generic"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ImageBase64 string `json:"image_base64"`
		MediaType   string `json:"media_type"`
		ImageURI    string `json:"image_uri"`
		Contract    string `json:"contract"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), nil)
		return nil
	}
	if err := middleware.ValidateMediaType(body.MediaType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return nil
	}
	data, err := middleware.DecodeImage(body.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return nil
	}

	a, err := r.svc.Analyze(req.Context(), analyses.AnalyzeCommand{
		ImageData: data,
		MediaType: body.MediaType,
		ImageURI:  middleware.SanitizeString(body.ImageURI),
		Contract:  prompt.Contract(body.Contract),
	})

	// A persistence failure still carries the finished analysis; return it
	// flagged as unsaved so the client can warn and retry the save.
	var perr *analysis.PersistenceError
	if errors.As(err, &perr) {
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(map[string]any{
			"analysis": a,
			"saved":    false,
			"warning":  perr.Error(),
		})
	}
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"analysis": a,
		"saved":    true,
	})
}

// GET /v1/analyses?direction=bullish
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.List(req.Context(), req.URL.Query().Get("direction"))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	a, err := r.svc.Get(req.Context(), analysis.ID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// DELETE /v1/analyses
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.Clear(req.Context()); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"cleared": true})
}

// GET /v1/faults?limit=20
func (r *Router) handleFaults(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.LatestFaults(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*faults.Fault{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
