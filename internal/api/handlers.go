package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mwhite7112/woodpantry-pickle/internal/metrics"
	"github.com/mwhite7112/woodpantry-pickle/internal/service"
)

// Checker answers whether an item can be pickled. Implemented by
// service.PickleChecker.
type Checker interface {
	Check(ctx context.Context, item string) service.CheckResult
}

// NewRouter wires all routes. m may be nil, in which case /metrics is not
// mounted and HTTP traffic is not measured.
func NewRouter(checker Checker, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(logger))
	if m != nil {
		r.Use(m.Middleware)
	}

	r.Get("/healthz", handleHealth)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/api/pickle", func(r chi.Router) {
		r.Post("/can-pickle", handleCanPickle(checker, logger))
		r.Get("/can-pickle", handleCanPickleQuery(checker, logger))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// --- POST /api/pickle/can-pickle ---

type canPickleRequest struct {
	Item *string `json:"item"`
}

func handleCanPickle(checker Checker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req canPickleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			textError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		var item string
		if req.Item != nil {
			item = strings.TrimSpace(*req.Item)
		}
		if item == "" {
			textError(w, "Item cannot be empty or null", http.StatusBadRequest)
			return
		}

		jsonOK(w, check(r.Context(), checker, logger, item))
	}
}

// --- GET /api/pickle/can-pickle?item= ---

func handleCanPickleQuery(checker Checker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item := strings.TrimSpace(r.URL.Query().Get("item"))
		if item == "" {
			textError(w, "Item parameter cannot be empty or null", http.StatusBadRequest)
			return
		}

		jsonOK(w, check(r.Context(), checker, logger, item))
	}
}

func check(ctx context.Context, checker Checker, logger *slog.Logger, item string) service.CheckResult {
	logger.InfoContext(ctx, "checking if item can be pickled", "item", item)
	result := checker.Check(ctx, item)
	logger.InfoContext(ctx, "pickle check result", "item", item, "can_pickle", result.CanPickle)
	return result
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// textError writes msg as-is; unlike http.Error it adds no trailing newline.
func textError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(msg)) //nolint:errcheck
}
