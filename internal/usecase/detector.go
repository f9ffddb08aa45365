package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"FraudGuard/internal/domain/models"
	drepo "FraudGuard/internal/domain/repository"
	"FraudGuard/pkg/config"
	"FraudGuard/pkg/logger"
)

// Detector runs the full risk evaluation for one transaction: model
// score, signature rules, behavioral profile update, combination, and
// best-effort delivery of the finished assessment.
type Detector struct {
	scorer      drepo.Scorer
	rules       RuleEvaluator
	profiles    drepo.ProfileStore
	store       drepo.AssessmentStore // optional
	alerts      drepo.AlertPublisher  // optional
	sink        drepo.AlertSink       // optional
	metrics     drepo.Metrics
	logger      *logger.Logger
	scoreThresh float64
	modelThresh float64

	txSeq atomic.Int64
	now   func() time.Time
}

// RuleEvaluator is the deterministic signature stage.
type RuleEvaluator interface {
	Evaluate(tx *models.Transaction) ([]string, float64)
}

// NewDetector wires the evaluation stages together. The transaction id
// sequence is seeded from wall-clock millis so ids stay monotonic
// across restarts as long as restarts take longer than the id rate.
func NewDetector(
	cfg *config.Config,
	scorer drepo.Scorer,
	rules RuleEvaluator,
	profiles drepo.ProfileStore,
	store drepo.AssessmentStore,
	alerts drepo.AlertPublisher,
	sink drepo.AlertSink,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Detector {
	d := &Detector{
		scorer:      scorer,
		rules:       rules,
		profiles:    profiles,
		store:       store,
		alerts:      alerts,
		sink:        sink,
		metrics:     metrics,
		logger:      log,
		scoreThresh: cfg.Alerts.ScoreThreshold,
		modelThresh: cfg.Alerts.ModelThreshold,
		now:         time.Now,
	}
	d.txSeq.Store(time.Now().UnixMilli())
	return d
}

// Detect evaluates one transaction. The scorer is called before any
// state is touched: if scoring fails, the behavioral profile is left
// exactly as it was and the error is returned to the caller.
func (d *Detector) Detect(ctx context.Context, tx *models.Transaction) (*models.RiskAssessment, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}
	start := d.now()

	prob, err := d.scorer.Score(ctx, tx)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrScoringUnavailable):
			d.metrics.RecordError("scoring_unavailable")
		case errors.Is(err, models.ErrInference):
			d.metrics.RecordError("inference")
		default:
			d.metrics.RecordError("scoring")
		}
		return nil, fmt.Errorf("score transaction: %w", err)
	}

	reasons, sigBoost := d.rules.Evaluate(tx)
	behaviorReasons, behaviorBoost := d.profiles.Update(tx.UserID, tx.DeviceID, start)
	reasons = append(reasons, behaviorReasons...)

	final := prob + sigBoost + behaviorBoost
	if final > 1.0 {
		final = 1.0
	}

	modelFlag := 0
	if prob > d.modelThresh {
		modelFlag = 1
	}
	alert := final > d.scoreThresh || modelFlag == 1

	a := &models.RiskAssessment{
		TransactionID:    d.txSeq.Add(1),
		UserID:           tx.UserID,
		FraudProbability: round4(prob),
		FinalRiskScore:   round4(final),
		ModelFlag:        modelFlag,
		AlertTriggered:   alert,
		AlertReasons:     reasons,
		Timestamp:        start.UTC(),
	}

	if alert {
		d.metrics.RecordEvaluation("alert")
		for _, r := range reasons {
			d.metrics.RecordAlert(r)
		}
	} else {
		d.metrics.RecordEvaluation("clear")
	}
	d.metrics.RecordTrackedUsers(d.profiles.Users())

	d.deliver(ctx, a)

	d.metrics.RecordLatency("detect", time.Since(start).Seconds())
	return a, nil
}

// deliver persists and fans out the assessment. Failures here are
// logged and counted but never fail the evaluation itself.
func (d *Detector) deliver(ctx context.Context, a *models.RiskAssessment) {
	if d.store != nil {
		if err := d.store.Append(ctx, a); err != nil {
			d.metrics.RecordError("assessment_store")
			d.logger.Error("append assessment",
				logger.Int64("transaction_id", a.TransactionID), logger.Error(err))
		}
	}
	if !a.AlertTriggered {
		return
	}
	if d.alerts != nil {
		if err := d.alerts.Publish(ctx, a); err != nil {
			d.metrics.RecordError("alert_publish")
			d.logger.Error("publish alert",
				logger.Int64("transaction_id", a.TransactionID), logger.Error(err))
		}
	}
	if d.sink != nil {
		d.sink.Broadcast(a)
	}
}

// Ready reports whether the detector can serve evaluations.
func (d *Detector) Ready(ctx context.Context) error {
	return d.scorer.Ready(ctx)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
