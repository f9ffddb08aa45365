package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"FraudGuard/internal/domain/models"
	"FraudGuard/internal/service/behavior"
	"FraudGuard/internal/service/ratelimit"
	"FraudGuard/internal/service/signature"
	"FraudGuard/internal/usecase"
	"FraudGuard/pkg/config"
	"FraudGuard/pkg/logger"
)

type fakeScorer struct {
	prob     float64
	err      error
	readyErr error
}

func (s *fakeScorer) Score(ctx context.Context, tx *models.Transaction) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.prob, nil
}

func (s *fakeScorer) Ready(ctx context.Context) error { return s.readyErr }

type fakeMetrics struct{}

func (fakeMetrics) RecordEvaluation(string)       {}
func (fakeMetrics) RecordAlert(string)            {}
func (fakeMetrics) RecordError(string)            {}
func (fakeMetrics) RecordTrackedUsers(int)        {}
func (fakeMetrics) RecordLatency(string, float64) {}

func handlerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Alerts.ScoreThreshold = 0.7
	cfg.Alerts.ModelThreshold = 0.5
	cfg.Behavior.Shards = 8
	cfg.Behavior.NewDeviceBoost = 0.30
	cfg.Behavior.BurstThreshold = 8
	cfg.Behavior.BurstBoost = 0.20
	cfg.Signatures.HighAmount = 50_000_000
	cfg.Signatures.HighAmountBoost = 0.35
	cfg.Signatures.NightStartHour = 0
	cfg.Signatures.NightEndHour = 5
	cfg.Signatures.NightBoost = 0.25
	cfg.Signatures.VelocityThreshold = 10
	cfg.Signatures.VelocityBoost = 0.20
	cfg.Signatures.ForeignLocations = []string{"Russia", "Turkey", "USA", "China", "UAE"}
	cfg.Signatures.ForeignBoost = 0.25
	return cfg
}

func newTestHandler(t *testing.T, sc *fakeScorer, limiter *ratelimit.Limiter) (*DetectEchoHandler, *echo.Echo) {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	cfg := handlerConfig()
	detector := usecase.NewDetector(cfg, sc, signature.NewEvaluator(cfg),
		behavior.NewStore(cfg), nil, nil, nil, fakeMetrics{}, l)
	h := NewDetectEchoHandler(l, detector, usecase.NewHistoryReader(nil), limiter, nil)

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func validBody(userID int64) string {
	tx := map[string]interface{}{
		"User_ID":                          userID,
		"Transaction_Amount":               250000.0,
		"Transaction_Location":             "Vietnam",
		"Merchant_ID":                      55,
		"Device_ID":                        9001,
		"Card_Type":                        "Visa",
		"Transaction_Currency":             "VND",
		"Transaction_Status":               "Completed",
		"Previous_Transaction_Count":       3,
		"Distance_Between_Transactions_km": 1.5,
		"Time_Since_Last_Transaction_min":  30.0,
		"Authentication_Method":            "PIN",
		"Transaction_Velocity":             2,
		"Transaction_Category":             "Groceries",
		"Transaction_Hour":                 14,
		"Transaction_Day":                  14,
		"Transaction_Month":                3,
		"Transaction_Weekday":              5,
		"Log_Transaction_Amount":           12.43,
		"Hour_sin":                         -0.5,
		"Hour_cos":                         -0.87,
		"Weekday_sin":                      -0.43,
		"Weekday_cos":                      -0.9,
	}
	b, _ := json.Marshal(tx)
	return string(b)
}

func doDetect(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDetectRejectsInvalidPayload(t *testing.T) {
	_, e := newTestHandler(t, &fakeScorer{prob: 0.1}, nil)

	rec := doDetect(e, `{"Transaction_Amount": 100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ERR_REQUIRED") {
		t.Fatalf("expected required-field validation error, got %s", rec.Body.String())
	}
}

func TestDetectScoringUnavailable(t *testing.T) {
	sc := &fakeScorer{err: fmt.Errorf("predict: %w", models.ErrScoringUnavailable)}
	_, e := newTestHandler(t, sc, nil)

	rec := doDetect(e, validBody(1))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ERR_UNAVAILABLE") {
		t.Fatalf("expected ERR_UNAVAILABLE code, got %s", rec.Body.String())
	}
}

func TestDetectInferenceFailure(t *testing.T) {
	sc := &fakeScorer{err: fmt.Errorf("predict: %w", models.ErrInference)}
	_, e := newTestHandler(t, sc, nil)

	rec := doDetect(e, validBody(1))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDetectSuccess(t *testing.T) {
	_, e := newTestHandler(t, &fakeScorer{prob: 0.62}, nil)

	rec := doDetect(e, validBody(1))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Status int                   `json:"status"`
		Data   models.RiskAssessment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	a := envelope.Data
	if a.UserID != 1 {
		t.Fatalf("expected user 1, got %d", a.UserID)
	}
	if a.FraudProbability != 0.62 {
		t.Fatalf("expected probability 0.62, got %v", a.FraudProbability)
	}
	// 0.62 + 0.30 new-device boost = 0.92 > 0.7
	if a.FinalRiskScore != 0.92 {
		t.Fatalf("expected final 0.92, got %v", a.FinalRiskScore)
	}
	if !a.AlertTriggered || a.ModelFlag != 1 {
		t.Fatalf("expected alert with model flag, got %+v", a)
	}
	if len(a.AlertReasons) != 1 || a.AlertReasons[0] != "New Device" {
		t.Fatalf("expected [New Device], got %v", a.AlertReasons)
	}
	if a.TransactionID == 0 || a.Timestamp.IsZero() {
		t.Fatalf("expected assigned id and timestamp, got %+v", a)
	}
}

func TestDetectRateLimited(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	_, e := newTestHandler(t, &fakeScorer{prob: 0.1}, limiter)

	if rec := doDetect(e, validBody(9)); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	rec := doDetect(e, validBody(9))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}

	// A different user has their own bucket.
	if rec := doDetect(e, validBody(10)); rec.Code != http.StatusOK {
		t.Fatalf("other user should pass, got %d", rec.Code)
	}
}

func TestAssessmentsDisabled(t *testing.T) {
	_, e := newTestHandler(t, &fakeScorer{prob: 0.1}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments?user_id=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when history disabled, got %d", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	_, e := newTestHandler(t, &fakeScorer{prob: 0.1}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected readyz 200, got %d", rec.Code)
	}

	sc := &fakeScorer{prob: 0.1, readyErr: fmt.Errorf("model not loaded: %w", models.ErrScoringUnavailable)}
	_, e = newTestHandler(t, sc, nil)
	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected readyz 503 when sidecar not ready, got %d", rec.Code)
	}
}
