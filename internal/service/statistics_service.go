package service

import (
	"context"
	"fmt"
	"time"

	"go-inventory-api/internal/repository"

	"go.uber.org/zap"
)

// StatsCache stores the last computed statistics. A miss is (nil, false, nil).
// Version changes on every invalidation; Set is given the version read before
// computing and must not store the snapshot once the version has moved.
type StatsCache interface {
	Get(ctx context.Context) (*Statistics, bool, error)
	Version(ctx context.Context) (int64, error)
	Set(ctx context.Context, version int64, stats *Statistics) error
}

type StatisticsService interface {
	Get(ctx context.Context) (*Statistics, error)
}

type statisticsService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	cache       StatsCache
	log         *zap.Logger
	now         func() time.Time
}

// NewStatisticsService builds the aggregator. cache may be nil.
func NewStatisticsService(pRepo repository.ProductRepository, aRepo repository.AuditRepository, cache StatsCache, log *zap.Logger) StatisticsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &statisticsService{
		productRepo: pRepo,
		auditRepo:   aRepo,
		cache:       cache,
		log:         log,
		now:         time.Now,
	}
}

func (s *statisticsService) Get(ctx context.Context) (*Statistics, error) {
	var version int64
	cacheable := s.cache != nil
	if cacheable {
		stats, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("read statistics cache", zap.Error(err))
		} else if ok {
			return stats, nil
		}
		if version, err = s.cache.Version(ctx); err != nil {
			s.log.Warn("read statistics cache version", zap.Error(err))
			cacheable = false
		}
	}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	recent, err := s.auditRepo.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent history: %w", err)
	}

	stats := ComputeStatistics(products, recent, s.now().UTC())

	if cacheable {
		if err := s.cache.Set(ctx, version, stats); err != nil {
			s.log.Warn("write statistics cache", zap.Error(err))
		}
	}
	return stats, nil
}
