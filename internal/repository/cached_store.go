package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FraudGuard/internal/domain/models"
	drepo "FraudGuard/internal/domain/repository"
	"FraudGuard/pkg/cache"
	"FraudGuard/pkg/logger"
)

// CachedAssessmentStore wraps an AssessmentStore with a read-through
// cache on Query. Writes go straight to the backing store; cached query
// results age out via TTL rather than being invalidated, so history
// reads can lag appends by up to the TTL.
type CachedAssessmentStore struct {
	store  drepo.AssessmentStore
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedAssessmentStore wraps store with c.
func NewCachedAssessmentStore(store drepo.AssessmentStore, c cache.Service, ttl time.Duration, log *logger.Logger) *CachedAssessmentStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedAssessmentStore{store: store, cache: c, ttl: ttl, logger: log}
}

func (s *CachedAssessmentStore) Append(ctx context.Context, a *models.RiskAssessment) error {
	return s.store.Append(ctx, a)
}

func (s *CachedAssessmentStore) Query(ctx context.Context, userID int64, from, to time.Time, limit int) ([]*models.RiskAssessment, error) {
	key := fmt.Sprintf("assessments:%d:%d:%d:%d", userID, from.Unix(), to.Unix(), limit)

	var cached []*models.RiskAssessment
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("assessment cache read", logger.Error(err))
	}

	out, err := s.store.Query(ctx, userID, from, to, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.logger.Warn("assessment cache write", logger.Error(err))
	}
	return out, nil
}

func (s *CachedAssessmentStore) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

func (s *CachedAssessmentStore) Close() error {
	return s.store.Close()
}
