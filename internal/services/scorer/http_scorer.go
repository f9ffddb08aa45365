package scorer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"FraudGuard/internal/domain/models"
	"FraudGuard/internal/service/metrics"
	"FraudGuard/pkg/config"
	xhttp "FraudGuard/pkg/http"
)

// HTTPScorer calls the Python scoring sidecar over HTTP. The sidecar owns
// the trained model; this adapter owns translating its failure modes into
// the engine's error taxonomy.
type HTTPScorer struct {
	baseURL     string
	predictPath string
	healthPath  string
	client      *xhttp.Client
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// NewHTTPScorer builds a scorer client from config.
func NewHTTPScorer(cfg *config.Config) *HTTPScorer {
	timeout := cfg.Scorer.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	metrics.Register()
	return &HTTPScorer{
		baseURL:     cfg.Scorer.BaseURL,
		predictPath: cfg.Scorer.PredictPath,
		healthPath:  cfg.Scorer.HealthPath,
		client:      xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Score posts the transaction feature vector and returns the model's
// fraud probability. A 503 from the sidecar means the model artifacts
// are not loaded; every other failure on this path is an inference
// failure.
func (s *HTTPScorer) Score(ctx context.Context, tx *models.Transaction) (float64, error) {
	start := time.Now()
	var resp predictResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.baseURL + s.predictPath,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    tx,
	}, &resp)
	metrics.ScoringLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScoringErrors.WithLabelValues("predict").Inc()
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Status == http.StatusServiceUnavailable {
			return 0, fmt.Errorf("predict: %w", models.ErrScoringUnavailable)
		}
		return 0, fmt.Errorf("predict: %v: %w", err, models.ErrInference)
	}
	if resp.Probability < 0 || resp.Probability > 1 {
		metrics.ScoringErrors.WithLabelValues("predict").Inc()
		return 0, fmt.Errorf("probability %v out of range: %w", resp.Probability, models.ErrInference)
	}
	return resp.Probability, nil
}

// Ready probes the sidecar health endpoint. The engine refuses to serve
// detect traffic until the sidecar reports its model as loaded.
func (s *HTTPScorer) Ready(ctx context.Context) error {
	var resp healthResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + s.healthPath,
	}, &resp)
	if err != nil {
		return fmt.Errorf("health: %v: %w", err, models.ErrScoringUnavailable)
	}
	if !resp.ModelLoaded {
		return fmt.Errorf("model not loaded: %w", models.ErrScoringUnavailable)
	}
	return nil
}
