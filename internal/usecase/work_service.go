package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/furukawa1020/furukawalabo1/pkg/messaging"

	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
)

const (
	worksCacheKey = "works_cache"
	worksCacheTTL = time.Hour
)

// WorkService serves the portfolio works list with a Redis read-through
// cache in front of the database
type WorkService struct {
	workRepo domainRepo.WorkRepository
	cache    messaging.RedisClient
	logger   *zap.Logger
}

// NewWorkService creates a new work service instance. The cache client
// may be nil; the service then reads straight from the database.
func NewWorkService(workRepo domainRepo.WorkRepository, cache messaging.RedisClient, logger *zap.Logger) *WorkService {
	return &WorkService{
		workRepo: workRepo,
		cache:    cache,
		logger:   logger,
	}
}

// List returns every work, newest published first. Cache misses and
// cache failures both fall through to the database.
func (s *WorkService) List(ctx context.Context) ([]model.Work, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, worksCacheKey)
		if err == nil {
			var works []model.Work
			if err := json.Unmarshal([]byte(cached), &works); err == nil {
				return works, nil
			}
			s.logger.Warn("Discarding corrupt works cache entry", zap.Error(err))
		} else if !s.cache.IsNotFound(err) {
			s.logger.Warn("Works cache read failed", zap.Error(err))
		}
	}

	works, err := s.workRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list works: %w", err)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(works); err == nil {
			if err := s.cache.Set(ctx, worksCacheKey, string(encoded), worksCacheTTL); err != nil {
				s.logger.Warn("Works cache write failed", zap.Error(err))
			}
		}
	}

	return works, nil
}

// Get returns one work by its upstream id
func (s *WorkService) Get(ctx context.Context, externalID string) (*model.Work, error) {
	return s.workRepo.GetByExternalID(ctx, externalID)
}

// InvalidateCache drops the cached works list so the next read sees
// freshly synced rows
func (s *WorkService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, worksCacheKey); err != nil {
		s.logger.Warn("Works cache invalidation failed", zap.Error(err))
	}
}
