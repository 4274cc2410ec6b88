package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/logging"
)

const maxBodyBytes = 1 << 16

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	importer ingest.Importer
	validate *validator.Validate
	checks   map[string]HealthCheck
	logger   *logging.Logger
}

// NewHandler creates a new handler
func NewHandler(importer ingest.Importer, checks map[string]HealthCheck, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		importer: importer,
		validate: newValidator(),
		checks:   checks,
		logger:   logger.Component("rest"),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("season", func(fl validator.FieldLevel) bool {
		_, err := ingest.ParseSeason(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := club.ParseCode(fl.Field().String())
		return err == nil
	})
	return v
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	respondJSON(w, code, map[string]interface{}{
		"status":       status,
		"service":      "goaliestats",
		"dependencies": deps,
	})
}

// RunImport handles POST /api/v1/import. An empty body imports the current
// season across all categories.
func (h *Handler) RunImport(w http.ResponseWriter, r *http.Request) {
	var req ingest.Request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read request body", err)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := sonic.Unmarshal(body, &req); err != nil {
			respondError(w, http.StatusInternalServerError, "Invalid request body", err)
			return
		}
	}
	h.runImport(w, r, req, h.importer.Import)
}

// GetImport handles GET /api/v1/import?season=&category=, answering from
// the cache when it can.
func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ingest.Request{Season: q.Get("season"), Category: q.Get("category")}
	h.runImport(w, r, req, h.importer.CachedImport)
}

func (h *Handler) runImport(w http.ResponseWriter, r *http.Request, req ingest.Request,
	run func(context.Context, ingest.Request) (*ingest.Result, error)) {
	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid import request", err)
		return
	}

	result, err := run(r.Context(), req)
	switch {
	case errors.Is(err, ingest.ErrInvalidSeason), errors.Is(err, club.ErrUnknownCategory):
		respondError(w, http.StatusBadRequest, "Invalid import request", err)
		return
	case err != nil:
		h.logger.Error("import failed", "season", req.Season, "category", req.Category, "error", err)
		respondError(w, http.StatusInternalServerError, "Import failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := sonic.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode response", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	body, _ := sonic.Marshal(resp)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
