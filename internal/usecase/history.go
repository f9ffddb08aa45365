package usecase

import (
	"context"
	"fmt"
	"time"

	"FraudGuard/internal/domain/models"
	drepo "FraudGuard/internal/domain/repository"
	"FraudGuard/pkg/util"
)

// HistoryReader serves read access to the assessment history.
type HistoryReader struct {
	store drepo.AssessmentStore
}

// NewHistoryReader creates a reader over the given store, which may be
// nil when persistence is disabled.
func NewHistoryReader(store drepo.AssessmentStore) *HistoryReader {
	return &HistoryReader{store: store}
}

// Enabled reports whether a backing store is configured.
func (h *HistoryReader) Enabled() bool {
	return h.store != nil
}

// Health checks the backing store. A disabled store is healthy.
func (h *HistoryReader) Health(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	return h.store.Health(ctx)
}

// Query resolves the request's time window and fetches matching
// assessments, newest first. An empty `from` defaults to 24h ago, an
// empty `to` defaults to now.
func (h *HistoryReader) Query(ctx context.Context, req *models.HistoryRequest) ([]*models.RiskAssessment, error) {
	if h.store == nil {
		return nil, fmt.Errorf("assessment history disabled")
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(req.To, now)
	if !from.Before(to) {
		return nil, fmt.Errorf("empty time window")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	return h.store.Query(ctx, req.UserID, from, to, limit)
}
