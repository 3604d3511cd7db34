package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cardgend/internal/pipeline"
	"cardgend/pkg/types"
)

// Version reported by GET /.
const Version = "1.0.0"

var endpoints = []string{"/", "/generate-card", "/healthz", "/readyz", "/metrics"}

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Generate(ctx context.Context, description string) (json.RawMessage, error)
	Ready() bool
}

// NewMux builds the router and wires all handlers.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", handleHealth)
	r.Post("/generate-card", handleGenerateCard(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not configured"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleHealth godoc
// @Summary  Service health and endpoint listing
// @Produce  json
// @Success  200 {object} types.HealthResponse
// @Router   / [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.HealthResponse{
		Status:    "ok",
		Endpoints: endpoints,
		Version:   Version,
	})
}

// handleGenerateCard godoc
// @Summary  Generate an Adaptive Card from a free-text description
// @Accept   json
// @Produce  json
// @Param    request body types.GenerateCardRequest true "card description"
// @Success  200 {object} map[string]any "the raw card artifact"
// @Failure  400 {object} types.ErrorResponse
// @Failure  429 {object} types.ErrorResponse
// @Failure  500 {object} types.ErrorResponse
// @Failure  504 {object} types.ErrorResponse
// @Router   /generate-card [post]
func handleGenerateCard(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json", 0)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.GenerateCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body", 0)
			return
		}
		if strings.TrimSpace(req.Description) == "" {
			writeJSONError(w, http.StatusBadRequest, "validation", "description is required", 0)
			return
		}

		start := time.Now()
		rid := middleware.GetReqID(r.Context())
		logEvent(r, "generate start", rid, 0, 0, nil)

		// Join server base context with request context so shutdown cancels
		// in-flight provider calls too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		card, err := svc.Generate(ctx, req.Description)
		if err != nil {
			// Client disconnect or shutdown: nothing sensible to write.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := writeGenerateError(w, err)
			logEvent(r, "generate end", rid, status, time.Since(start), err)
			return
		}

		// The card artifact is the entire response body, not wrapped.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(card)
		logEvent(r, "generate end", rid, http.StatusOK, time.Since(start), nil)
	}
}

// writeGenerateError maps pipeline errors onto the authoritative status table
// and returns the status written. External bodies carry only short
// machine-stable strings; wrapped diagnostics stay in the logs.
func writeGenerateError(w http.ResponseWriter, err error) int {
	switch {
	case pipeline.IsBusy(err):
		IncrementBackpressure("inflight_limit")
		writeJSONError(w, http.StatusTooManyRequests, "busy", "another generation is in progress, retry shortly", 0)
		return http.StatusTooManyRequests
	case pipeline.IsRateLimit(err):
		retryAfter := pipeline.RetryAfterSeconds(err)
		w.Header().Set("Retry-After", itoa(retryAfter))
		writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "provider rate limit exceeded", retryAfter)
		return http.StatusTooManyRequests
	case pipeline.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation", err.Error(), 0)
		return http.StatusBadRequest
	case pipeline.IsTimeout(err):
		writeJSONError(w, http.StatusGatewayTimeout, "timeout", "provider did not respond in time", 0)
		return http.StatusGatewayTimeout
	case pipeline.IsConfiguration(err):
		writeJSONError(w, http.StatusInternalServerError, "configuration", "server is not configured for generation", 0)
		return http.StatusInternalServerError
	case pipeline.IsMalformedResponse(err):
		writeJSONError(w, http.StatusInternalServerError, "malformed_response", "model returned an unusable card", 0)
		return http.StatusInternalServerError
	default:
		writeJSONError(w, http.StatusInternalServerError, "provider_error", "card generation failed", 0)
		return http.StatusInternalServerError
	}
}

func logEvent(r *http.Request, msg, rid string, status int, dur time.Duration, err error) {
	if requestLogLevel(r) < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path)
		if rid != "" {
			z = z.Str("request_id", rid)
		}
		if status != 0 {
			z = z.Int("status", status).Dur("dur", dur)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg(msg)
		return
	}
	if err != nil {
		log.Printf("%s path=%s status=%d dur=%s err=%v", msg, r.URL.Path, status, dur, err)
		return
	}
	log.Printf("%s path=%s status=%d dur=%s", msg, r.URL.Path, status, dur)
}
