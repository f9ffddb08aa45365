package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"FraudGuard/internal/domain/models"
	"FraudGuard/internal/service/behavior"
	"FraudGuard/pkg/config"
	"FraudGuard/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type stubScorer struct {
	prob     float64
	err      error
	readyErr error
	calls    int
}

func (s *stubScorer) Score(ctx context.Context, tx *models.Transaction) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.prob, nil
}

func (s *stubScorer) Ready(ctx context.Context) error { return s.readyErr }

type stubRules struct {
	reasons []string
	boost   float64
}

func (r *stubRules) Evaluate(tx *models.Transaction) ([]string, float64) {
	return r.reasons, r.boost
}

type stubProfiles struct {
	reasons []string
	boost   float64
	calls   int
}

func (p *stubProfiles) Update(userID, deviceID int64, now time.Time) ([]string, float64) {
	p.calls++
	return p.reasons, p.boost
}

func (p *stubProfiles) Users() int { return 1 }

type recordingStore struct {
	appended  []*models.RiskAssessment
	appendErr error
}

func (s *recordingStore) Append(ctx context.Context, a *models.RiskAssessment) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, a)
	return nil
}

func (s *recordingStore) Query(ctx context.Context, userID int64, from, to time.Time, limit int) ([]*models.RiskAssessment, error) {
	return s.appended, nil
}

func (s *recordingStore) Health(ctx context.Context) error { return nil }
func (s *recordingStore) Close() error                     { return nil }

type recordingPublisher struct {
	published []*models.RiskAssessment
}

func (p *recordingPublisher) Publish(ctx context.Context, a *models.RiskAssessment) error {
	p.published = append(p.published, a)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingSink struct {
	got []*models.RiskAssessment
}

func (s *recordingSink) Broadcast(a *models.RiskAssessment) { s.got = append(s.got, a) }

type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(string)      {}
func (nopMetrics) RecordAlert(string)           {}
func (nopMetrics) RecordError(string)           {}
func (nopMetrics) RecordTrackedUsers(int)       {}
func (nopMetrics) RecordLatency(string, float64) {}

func detectorConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Alerts.ScoreThreshold = 0.7
	cfg.Alerts.ModelThreshold = 0.5
	cfg.Behavior.Shards = 8
	cfg.Behavior.NewDeviceBoost = 0.30
	cfg.Behavior.BurstThreshold = 8
	cfg.Behavior.BurstBoost = 0.20
	return cfg
}

func sampleTx() *models.Transaction {
	return &models.Transaction{UserID: 42, DeviceID: 7, TransactionAmount: 1000}
}

func TestDetectClampsFinalScore(t *testing.T) {
	d := NewDetector(detectorConfig(), &stubScorer{prob: 0.9},
		&stubRules{reasons: []string{"High Amount"}, boost: 0.35},
		&stubProfiles{}, nil, nil, nil, nopMetrics{}, testLogger(t))

	a, err := d.Detect(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if a.FinalRiskScore != 1.0 {
		t.Fatalf("expected final score clamped to 1.0, got %v", a.FinalRiskScore)
	}
	if a.ModelFlag != 1 || !a.AlertTriggered {
		t.Fatalf("expected model flag and alert, got flag=%d alert=%v", a.ModelFlag, a.AlertTriggered)
	}
}

func TestDetectRoundsToFourDecimals(t *testing.T) {
	d := NewDetector(detectorConfig(), &stubScorer{prob: 0.123456},
		&stubRules{}, &stubProfiles{}, nil, nil, nil, nopMetrics{}, testLogger(t))

	a, err := d.Detect(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if a.FraudProbability != 0.1235 {
		t.Fatalf("expected probability 0.1235, got %v", a.FraudProbability)
	}
	if a.FinalRiskScore != 0.1235 {
		t.Fatalf("expected final 0.1235, got %v", a.FinalRiskScore)
	}
}

func TestDetectAlertTriggers(t *testing.T) {
	cases := []struct {
		name      string
		prob      float64
		boost     float64
		wantFlag  int
		wantAlert bool
	}{
		{"model flag alone", 0.51, 0, 1, true},
		{"score alone", 0.40, 0.35, 0, true},
		{"model threshold is strict", 0.50, 0, 0, false},
		{"just under score threshold", 0.44, 0.25, 0, false},
		{"neither", 0.10, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(detectorConfig(), &stubScorer{prob: tc.prob},
				&stubRules{boost: tc.boost}, &stubProfiles{}, nil, nil, nil,
				nopMetrics{}, testLogger(t))

			a, err := d.Detect(context.Background(), sampleTx())
			if err != nil {
				t.Fatalf("detect failed: %v", err)
			}
			if a.ModelFlag != tc.wantFlag {
				t.Fatalf("expected flag %d, got %d", tc.wantFlag, a.ModelFlag)
			}
			if a.AlertTriggered != tc.wantAlert {
				t.Fatalf("expected alert=%v, got %v (final=%v)", tc.wantAlert, a.AlertTriggered, a.FinalRiskScore)
			}
		})
	}
}

func TestDetectReasonOrder(t *testing.T) {
	// Signature reasons come first, behavioral reasons after.
	profiles := behavior.NewStore(detectorConfig())
	d := NewDetector(detectorConfig(), &stubScorer{prob: 0.2},
		&stubRules{reasons: []string{"High Amount", "Night"}, boost: 0.6},
		profiles, nil, nil, nil, nopMetrics{}, testLogger(t))

	a, err := d.Detect(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	want := []string{"High Amount", "Night", "New Device"}
	if !reflect.DeepEqual(a.AlertReasons, want) {
		t.Fatalf("expected reasons %v, got %v", want, a.AlertReasons)
	}
}

func TestDetectScorerFailureLeavesNoTrace(t *testing.T) {
	profiles := behavior.NewStore(detectorConfig())
	store := &recordingStore{}
	d := NewDetector(detectorConfig(),
		&stubScorer{err: fmt.Errorf("predict: %w", models.ErrScoringUnavailable)},
		&stubRules{}, profiles, store, nil, nil, nopMetrics{}, testLogger(t))

	_, err := d.Detect(context.Background(), sampleTx())
	if !errors.Is(err, models.ErrScoringUnavailable) {
		t.Fatalf("expected scoring unavailable, got %v", err)
	}

	if _, _, ok := profiles.Snapshot(42); ok {
		t.Fatalf("profile must not be created when scoring fails")
	}
	if len(store.appended) != 0 {
		t.Fatalf("nothing may be persisted when scoring fails")
	}
}

func TestDetectDelivery(t *testing.T) {
	store := &recordingStore{}
	pub := &recordingPublisher{}
	sink := &recordingSink{}

	d := NewDetector(detectorConfig(), &stubScorer{prob: 0.9},
		&stubRules{}, &stubProfiles{}, store, pub, sink, nopMetrics{}, testLogger(t))
	if _, err := d.Detect(context.Background(), sampleTx()); err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(store.appended) != 1 || len(pub.published) != 1 || len(sink.got) != 1 {
		t.Fatalf("alerting assessment must reach store, publisher and sink: %d/%d/%d",
			len(store.appended), len(pub.published), len(sink.got))
	}

	// A clear assessment is stored but not published.
	d2 := NewDetector(detectorConfig(), &stubScorer{prob: 0.1},
		&stubRules{}, &stubProfiles{}, store, pub, sink, nopMetrics{}, testLogger(t))
	if _, err := d2.Detect(context.Background(), sampleTx()); err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(store.appended) != 2 {
		t.Fatalf("clear assessment must still be stored, got %d", len(store.appended))
	}
	if len(pub.published) != 1 || len(sink.got) != 1 {
		t.Fatalf("clear assessment must not be published or broadcast")
	}
}

func TestDetectStoreFailureIsBestEffort(t *testing.T) {
	store := &recordingStore{appendErr: errors.New("insert failed")}
	d := NewDetector(detectorConfig(), &stubScorer{prob: 0.9},
		&stubRules{}, &stubProfiles{}, store, nil, nil, nopMetrics{}, testLogger(t))

	a, err := d.Detect(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("store failure must not fail detection: %v", err)
	}
	if a == nil || !a.AlertTriggered {
		t.Fatalf("expected alerting assessment despite store failure")
	}
}

func TestDetectTransactionIDsMonotonic(t *testing.T) {
	d := NewDetector(detectorConfig(), &stubScorer{prob: 0.1},
		&stubRules{}, &stubProfiles{}, nil, nil, nil, nopMetrics{}, testLogger(t))

	a1, err := d.Detect(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	a2, err := d.Detect(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if a2.TransactionID != a1.TransactionID+1 {
		t.Fatalf("ids must be sequential, got %d then %d", a1.TransactionID, a2.TransactionID)
	}
	if a1.TransactionID < time.Now().Add(-time.Hour).UnixMilli() {
		t.Fatalf("id sequence must be seeded from wall clock, got %d", a1.TransactionID)
	}
}
