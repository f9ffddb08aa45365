package repository

import (
	"context"
	"time"

	"FraudGuard/internal/domain/models"
)

// Scorer produces a fraud probability for a transaction.
type Scorer interface {
	// Score returns a probability in [0,1]. Errors wrap either
	// models.ErrScoringUnavailable or models.ErrInference.
	Score(ctx context.Context, tx *models.Transaction) (float64, error)
	// Ready reports whether the scoring backend can serve predictions.
	Ready(ctx context.Context) error
}

// ProfileStore tracks per-user behavioral state. Update applies one
// transaction's observation atomically and returns the behavioral alert
// reasons it raised plus their combined risk boost.
type ProfileStore interface {
	Update(userID, deviceID int64, now time.Time) (reasons []string, boost float64)
	// Users returns the number of users currently tracked.
	Users() int
}

// AssessmentStore persists finished risk assessments for later review.
type AssessmentStore interface {
	Append(ctx context.Context, a *models.RiskAssessment) error
	Query(ctx context.Context, userID int64, from, to time.Time, limit int) ([]*models.RiskAssessment, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher pushes triggered assessments to the alert stream.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.RiskAssessment) error
	Close() error
}

// AlertSink receives triggered assessments for live fan-out.
type AlertSink interface {
	Broadcast(a *models.RiskAssessment)
}

// Metrics records operational metrics for the engine.
type Metrics interface {
	RecordEvaluation(outcome string)
	RecordAlert(reason string)
	RecordError(kind string)
	RecordTrackedUsers(n int)
	RecordLatency(operation string, seconds float64)
}
