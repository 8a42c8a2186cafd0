package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PortfolioSim/internal/domain/models"
	drepo "PortfolioSim/internal/domain/repository"
	"PortfolioSim/internal/service/cache"
)

var _ drepo.JobStore = (*CacheJobStore)(nil)

// CacheJobStore keeps job snapshots as JSON in a BytesCache. Every save
// refreshes the TTL.
type CacheJobStore struct {
	cache cache.BytesCache
	ttl   time.Duration
}

func NewCacheJobStore(c cache.BytesCache, ttl time.Duration) *CacheJobStore {
	return &CacheJobStore{cache: c, ttl: ttl}
}

func jobKey(id string) string { return "job:" + id }

func (s *CacheJobStore) Save(ctx context.Context, job *models.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.cache.SetBytes(ctx, jobKey(job.ID), b, s.ttl); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

func (s *CacheJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	b, ok, err := s.cache.GetBytes(ctx, jobKey(id))
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if !ok {
		return nil, drepo.ErrJobNotFound
	}
	var job models.Job
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *CacheJobStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, jobKey(id))
}
