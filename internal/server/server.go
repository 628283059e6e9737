// Package server exposes the tax engine as a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/qc-net-income/internal/calculator"
	"github.com/iwvelando/qc-net-income/internal/config"
	"github.com/iwvelando/qc-net-income/internal/optimizer"
	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/format"
	"github.com/iwvelando/qc-net-income/pkg/optimization"
	"github.com/iwvelando/qc-net-income/pkg/output"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"github.com/iwvelando/qc-net-income/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	conf           *config.Configuration
	catalog        *taxengine.Catalog
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler serving the tax API. conf supplies
// the default year, locale, hours per week and any extra tax years.
func NewHandler(logger *zap.Logger, conf *config.Configuration, maxRequestSize int64, version string) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	}
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = constants.DefaultVersion
	}

	catalog, err := conf.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build tax year catalog: %w", err)
	}

	h := &handler{
		logger:         logger,
		conf:           conf,
		catalog:        catalog,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
	}

	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(bodyLimit(maxRequestSize))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": http.StatusText(http.StatusNotFound)})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": http.StatusText(http.StatusMethodNotAllowed)})
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/years", h.handleYears)
		r.Get("/years/{year}", h.handleYear)
		r.Get("/taxes", h.handleTaxes)
		r.Get("/marginal-rate", h.handleMarginalRate)
		r.Post("/scenarios", h.handleScenarios)
		r.Post("/gross-up", h.handleGrossUp)
	})

	return router, nil
}

// Serve runs the HTTP server until ctx is cancelled, then gives in-flight
// requests cfg.ShutdownTimeout to complete.
func Serve(ctx context.Context, logger *zap.Logger, cfg *Config, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "server.Serve"),
			zap.String("address", cfg.Address),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown initiated", zap.String("op", "server.Serve"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "server.Serve"),
				zap.Error(err),
			)
			return srv.Close()
		}
		return nil
	}
}

type yearsResponse struct {
	DefaultYear int   `json:"defaultYear"`
	Years       []int `json:"years"`
}

type taxesResponse struct {
	calculator.ScenarioResult
	Locale  string            `json:"locale"`
	Display map[string]string `json:"display"`
}

type marginalRateResponse struct {
	Year         int     `json:"year"`
	Income       float64 `json:"income"`
	MarginalRate float64 `json:"marginalRate"`
	Display      string  `json:"display"`
}

type scenariosResponse struct {
	Scenarios []calculator.ScenarioResult `json:"scenarios"`
	GrossUp   []optimization.Summary      `json:"grossUp,omitempty"`
	CSV       string                      `json:"csv"`
	Warnings  []string                    `json:"warnings,omitempty"`
	Duration  string                      `json:"duration"`
}

type grossUpRequest struct {
	Name          string  `json:"name"`
	TargetNet     float64 `json:"targetNet"`
	Year          int     `json:"year"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"maxIterations"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleYears(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, yearsResponse{
		DefaultYear: h.conf.ResolveYear(0),
		Years:       h.catalog.Years(),
	})
}

func (h *handler) handleYear(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleYear"

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", chi.URLParam(r, "year")), op)
		return
	}

	taxYear, err := h.catalog.Year(year)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, taxYear)
}

func (h *handler) handleTaxes(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTaxes"

	income, taxYear, ok := h.incomeAndYear(w, r, op)
	if !ok {
		return
	}

	hours := 0.0
	if raw := strings.TrimSpace(r.URL.Query().Get("hours")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid hours %q", raw), op)
			return
		}
		hours = parsed
	}

	locale, err := format.NormalizeLocale(h.localeFor(r))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := calculator.EvaluateIncome(income, taxYear, h.conf.ResolveHoursPerWeek(hours))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, taxesResponse{
		ScenarioResult: result,
		Locale:         locale,
		Display: map[string]string{
			"grossIncome":     format.Currency(result.Result.GrossIncome, locale),
			"totalDeductions": format.Currency(result.Result.TotalDeductions, locale),
			"netIncome":       format.Currency(result.Result.NetIncome, locale),
			"marginalRate":    format.Percent(result.MarginalRate, locale),
			"effectiveRate":   format.Percent(result.EffectiveRate, locale),
		},
	})
}

func (h *handler) handleMarginalRate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMarginalRate"

	income, taxYear, ok := h.incomeAndYear(w, r, op)
	if !ok {
		return
	}

	rate, err := taxengine.MarginalRate(income, taxYear)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, marginalRateResponse{
		Year:         taxYear.Year,
		Income:       income,
		MarginalRate: rate,
		Display:      format.Cents(rate),
	})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarios"
	start := time.Now()

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(body))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	results, err := calculator.Evaluate(h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("failed to evaluate scenarios: %v", err), op)
		return
	}

	var summaries []optimization.Summary
	if len(cfg.GrossUp) > 0 {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize gross-up solver: %v", err), op)
			return
		}
		solved, err := runner.Run()
		if err != nil {
			h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("gross-up failed: %v", err), op)
			return
		}
		summaries = solved.Summaries
	}

	if results == nil {
		results = []calculator.ScenarioResult{}
	}
	elapsed := time.Since(start)
	response := scenariosResponse{
		Scenarios: results,
		GrossUp:   summaries,
		CSV:       output.CsvString(results),
		Warnings:  warnings,
		Duration:  elapsed.String(),
	}

	h.logger.Info("scenarios computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Int("grossUp", len(summaries)),
		zap.Duration("duration", elapsed),
		zap.String("requestId", RequestIDFromContext(r.Context())),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleGrossUp(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGrossUp"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	var req grossUpRequest
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid gross-up request: %v", err), op)
		return
	}

	runner, err := optimizer.NewRunner(h.logger, h.conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	target := config.GrossUpTarget{
		Name:          req.Name,
		TargetNet:     req.TargetNet,
		Year:          req.Year,
		Tolerance:     req.Tolerance,
		MaxIterations: req.MaxIterations,
	}
	if err := target.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	summary, err := runner.Solve(target)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// incomeAndYear parses the income and year query parameters shared by the
// calculation endpoints. It writes the error response itself.
func (h *handler) incomeAndYear(w http.ResponseWriter, r *http.Request, op string) (float64, taxengine.TaxYear, bool) {
	query := r.URL.Query()

	income, err := validation.ParseIncome(query.Get("income"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return 0, taxengine.TaxYear{}, false
	}

	year := 0
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", raw), op)
			return 0, taxengine.TaxYear{}, false
		}
	}

	taxYear, err := h.catalog.Year(h.conf.ResolveYear(year))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return 0, taxengine.TaxYear{}, false
	}
	return income, taxYear, true
}

func (h *handler) localeFor(r *http.Request) string {
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		return locale
	}
	if h.conf.Output.Locale != "" {
		return h.conf.Output.Locale
	}
	return constants.DefaultLocale
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxRequestSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err), op)
		return nil, false
	}
	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		return nil, false
	}
	return buf.Bytes(), true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, taxengine.ErrUnknownYear):
		return http.StatusNotFound
	case errors.Is(err, taxengine.ErrInvalidIncome),
		errors.Is(err, taxengine.ErrInvalidSchedule),
		errors.Is(err, taxengine.ErrInvalidContributionRule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
