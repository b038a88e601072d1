package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"agenttrust/internal/evolution"
	"agenttrust/internal/gametheory"
	"agenttrust/internal/montecarlo"
	"agenttrust/internal/storage"
)

// APIServer exposes the analysis engine over HTTP.
type APIServer struct {
	store       *storage.PostgresStore // nil when persistence is disabled
	rateLimiter *rate.Limiter
	metrics     *Metrics
	logger      *slog.Logger
}

// Metrics tracks API performance.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
}

func newMetrics() *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analysis_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "analysis_api_active_requests",
				Help: "Number of active API requests",
			},
		),
	}

	prometheus.MustRegister(m.requestsTotal, m.requestDuration, m.activeRequests)
	return m
}

func NewAPIServer(store *storage.PostgresStore, logger *slog.Logger) *APIServer {
	return &APIServer{
		store:       store,
		rateLimiter: rate.NewLimiter(rate.Limit(100), 200), // 100 RPS burst 200
		metrics:     newMetrics(),
		logger:      logger,
	}
}

func (s *APIServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow() {
			s.metrics.requestsTotal.WithLabelValues(r.URL.Path, "429").Inc()
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *APIServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.activeRequests.Inc()
		defer s.metrics.activeRequests.Dec()

		next.ServeHTTP(w, r)

		duration := time.Since(start).Seconds()
		s.metrics.requestDuration.WithLabelValues(r.URL.Path).Observe(duration)
	})
}

// jsonFloat is a float64 that renders non-finite values as null.
// encoding/json rejects IEEE infinities outright, and several results
// legitimately carry +Inf (unbounded required stake, a mutant lineage
// that never goes extinct). The store records the same cases as NULL.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// writeJSON encodes a success response and counts it.
func (s *APIServer) writeJSON(w http.ResponseWriter, endpoint string, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", "endpoint", endpoint, "error", err)
		s.metrics.requestsTotal.WithLabelValues(endpoint, "500").Inc()
		return
	}
	s.metrics.requestsTotal.WithLabelValues(endpoint, "200").Inc()
}

// writeError maps engine errors onto HTTP statuses: invalid input is the
// caller's fault, computation failures and everything else are 422/500.
func (s *APIServer) writeError(w http.ResponseWriter, endpoint string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gametheory.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, gametheory.ErrComputationFailure):
		status = http.StatusUnprocessableEntity
	}
	s.metrics.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "endpoint", endpoint, "error", err)
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// HandleHealth returns API health status.
func (s *APIServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "/health", HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
	})
}

// HonestyProofRequest represents the dominance analysis payload.
type HonestyProofRequest struct {
	Stake                float64 `json:"stake"`
	DetectionProbability float64 `json:"detection_probability"`
	ReputationValue      float64 `json:"reputation_value"`
	MaxViolationGain     float64 `json:"max_violation_gain"`
	Coburn               float64 `json:"coburn"`
}

// HonestyProofResponse mirrors gametheory.HonestyProof with JSON names.
// RequiredStake is +Inf for undetectable violations and serializes as
// null.
type HonestyProofResponse struct {
	IsDominantStrategy bool      `json:"is_dominant_strategy"`
	Margin             float64   `json:"margin"`
	RequiredStake      jsonFloat `json:"required_stake"`
	RequiredDetection  float64   `json:"required_detection"`
	Derivation         string    `json:"derivation"`
}

// HandleProveHonesty computes the static dominance proof.
func (s *APIServer) HandleProveHonesty(w http.ResponseWriter, r *http.Request) {
	var req HonestyProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := gametheory.HonestyParameters{
		Stake:                req.Stake,
		DetectionProbability: req.DetectionProbability,
		ReputationValue:      req.ReputationValue,
		MaxViolationGain:     req.MaxViolationGain,
		Coburn:               req.Coburn,
	}

	proof, err := gametheory.ProveHonesty(params)
	if err != nil {
		s.writeError(w, "/api/v1/honesty-proof", err)
		return
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.store.SaveHonestyProof(ctx, params, proof); err != nil {
			s.logger.Warn("failed to persist honesty proof", "error", err)
		}
	}

	s.writeJSON(w, "/api/v1/honesty-proof", HonestyProofResponse{
		IsDominantStrategy: proof.IsDominantStrategy,
		Margin:             proof.Margin,
		RequiredStake:      jsonFloat(proof.RequiredStake),
		RequiredDetection:  proof.RequiredDetection,
		Derivation:         proof.Derivation,
	})
}

// FolkTheoremRequest represents the repeated-game analysis payload.
type FolkTheoremRequest struct {
	CooperatePayoff  float64 `json:"cooperate_payoff"`
	DefectPayoff     float64 `json:"defect_payoff"`
	TemptationPayoff float64 `json:"temptation_payoff"`
	SuckerPayoff     float64 `json:"sucker_payoff"`
	DiscountFactor   float64 `json:"discount_factor"`
}

// HandleFolkTheorem computes the grim-trigger discount threshold.
func (s *APIServer) HandleFolkTheorem(w http.ResponseWriter, r *http.Request) {
	var req FolkTheoremRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := gametheory.AnalyzeFolkTheorem(gametheory.RepeatedGameParams{
		CooperatePayoff:  req.CooperatePayoff,
		DefectPayoff:     req.DefectPayoff,
		TemptationPayoff: req.TemptationPayoff,
		SuckerPayoff:     req.SuckerPayoff,
		DiscountFactor:   req.DiscountFactor,
	})
	if err != nil {
		s.writeError(w, "/api/v1/folk-theorem", err)
		return
	}

	s.writeJSON(w, "/api/v1/folk-theorem", map[string]any{
		"min_discount_factor":     result.MinDiscountFactor,
		"cooperation_sustainable": result.CooperationSustainable,
		"margin":                  result.Margin,
		"derivation":              result.Derivation,
	})
}

// CoalitionRequest represents the core-membership payload.
type CoalitionRequest struct {
	AgentCount int       `json:"agent_count"`
	Allocation []float64 `json:"allocation"`
	Coalitions []struct {
		Members []int   `json:"members"`
		Value   float64 `json:"value"`
	} `json:"coalitions"`
}

// HandleCoalitionStability tests an allocation for core membership.
func (s *APIServer) HandleCoalitionStability(w http.ResponseWriter, r *http.Request) {
	var req CoalitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	values := make([]gametheory.CoalitionValue, len(req.Coalitions))
	for i, c := range req.Coalitions {
		values[i] = gametheory.CoalitionValue{Members: c.Members, Value: c.Value}
	}

	result, err := gametheory.CheckCoalitionStability(req.AgentCount, req.Allocation, values)
	if err != nil {
		s.writeError(w, "/api/v1/coalition-stability", err)
		return
	}

	s.writeJSON(w, "/api/v1/coalition-stability", result)
}

// ESSRequest represents the evolutionary-stability payload.
type ESSRequest struct {
	PopulationSize int           `json:"population_size"`
	MutantFraction float64       `json:"mutant_fraction"`
	Payoffs        [2][2]float64 `json:"payoffs"`
}

// ESSResponse mirrors evolution.ESSResult with JSON names. Extinction
// generations are +Inf for favorable mutants and serialize as null.
type ESSResponse struct {
	IsESS                         bool      `json:"is_ess"`
	StrictNashCondition           bool      `json:"strict_nash_condition"`
	StabilityCondition            bool      `json:"stability_condition"`
	InvasionFitness               float64   `json:"invasion_fitness"`
	CriticalMutantFraction        float64   `json:"critical_mutant_fraction"`
	ExpectedExtinctionGenerations jsonFloat `json:"expected_extinction_generations"`
	Derivation                    string    `json:"derivation"`
}

// HandleESS runs the evolutionary-stability analysis.
func (s *APIServer) HandleESS(w http.ResponseWriter, r *http.Request) {
	var req ESSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := evolution.AnalyzeESS(evolution.ESSParameters{
		PopulationSize: req.PopulationSize,
		MutantFraction: req.MutantFraction,
		Payoffs:        evolution.PayoffMatrix(req.Payoffs),
	})
	if err != nil {
		s.writeError(w, "/api/v1/ess", err)
		return
	}

	s.writeJSON(w, "/api/v1/ess", ESSResponse{
		IsESS:                         result.IsESS,
		StrictNashCondition:           result.StrictNashCondition,
		StabilityCondition:            result.StabilityCondition,
		InvasionFitness:               result.InvasionFitness,
		CriticalMutantFraction:        result.CriticalMutantFraction,
		ExpectedExtinctionGenerations: jsonFloat(result.ExpectedExtinctionGenerations),
		Derivation:                    result.Derivation,
	})
}

// DetectionValidationRequest represents the Monte Carlo payload. When a
// correlation matrix is supplied the Gaussian-copula validator runs.
type DetectionValidationRequest struct {
	SimulationRuns       int            `json:"simulation_runs"`
	AgentCount           int            `json:"agent_count"`
	InteractionsPerAgent int            `json:"interactions_per_agent"`
	ViolationProbability float64        `json:"violation_probability"`
	Seed                 uint64         `json:"seed,omitempty"`
	Correlation          *[3][3]float64 `json:"correlation,omitempty"`
}

// HandleDetectionValidation runs the (optionally correlated) detection
// validator.
func (s *APIServer) HandleDetectionValidation(w http.ResponseWriter, r *http.Request) {
	var req DetectionValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := montecarlo.DetectionValidationParams{
		SimulationRuns:       req.SimulationRuns,
		AgentCount:           req.AgentCount,
		InteractionsPerAgent: req.InteractionsPerAgent,
		ViolationProbability: req.ViolationProbability,
		Seed:                 req.Seed,
	}

	if req.Correlation != nil {
		result, err := montecarlo.ValidateCorrelatedDetection(montecarlo.CorrelatedDetectionParams{
			DetectionValidationParams: params,
			Correlation:               *req.Correlation,
		})
		if err != nil {
			s.writeError(w, "/api/v1/detection-validation", err)
			return
		}
		s.persistDetectionRun(r.Context(), result.Independent)
		s.writeJSON(w, "/api/v1/detection-validation", result)
		return
	}

	result, err := montecarlo.ValidateDetectionRates(params)
	if err != nil {
		s.writeError(w, "/api/v1/detection-validation", err)
		return
	}
	s.persistDetectionRun(r.Context(), result)
	s.writeJSON(w, "/api/v1/detection-validation", result)
}

func (s *APIServer) persistDetectionRun(ctx context.Context, result montecarlo.DetectionValidationResult) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.store.SaveDetectionRun(ctx, result); err != nil {
		s.logger.Warn("failed to persist detection run", "error", err)
	}
}

// HandleRecentProofs lists stored dominance proofs, newest first.
func (s *APIServer) HandleRecentProofs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := s.store.RecentProofs(ctx, 100)
	if err != nil {
		s.writeError(w, "/api/v1/proofs", err)
		return
	}

	s.writeJSON(w, "/api/v1/proofs", records)
}

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))

	// Persistence is optional: the engine is pure computation, the store
	// only keeps an audit trail.
	var store *storage.PostgresStore
	if getEnv("ENABLE_PERSISTENCE", "false") == "true" {
		dbConfig := storage.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "agenttrust_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		}

		var err error
		store, err = storage.NewPostgresStore(dbConfig)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.InitSchema(ctx); err != nil {
			cancel()
			logger.Error("failed to initialize schema", "error", err)
			os.Exit(1)
		}
		cancel()
	}

	server := NewAPIServer(store, logger)

	r := mux.NewRouter()
	r.Use(server.rateLimitMiddleware)
	r.Use(server.metricsMiddleware)

	r.HandleFunc("/health", server.HandleHealth).Methods("GET")
	r.HandleFunc("/api/v1/honesty-proof", server.HandleProveHonesty).Methods("POST")
	r.HandleFunc("/api/v1/folk-theorem", server.HandleFolkTheorem).Methods("POST")
	r.HandleFunc("/api/v1/coalition-stability", server.HandleCoalitionStability).Methods("POST")
	r.HandleFunc("/api/v1/ess", server.HandleESS).Methods("POST")
	r.HandleFunc("/api/v1/detection-validation", server.HandleDetectionValidation).Methods("POST")
	r.HandleFunc("/api/v1/proofs", server.HandleRecentProofs).Methods("GET")

	r.Handle("/metrics", promhttp.Handler())

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API server listening", "port", port, "persistence", store != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
