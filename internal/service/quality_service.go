package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/line-quality/internal/metrics"
	"github.com/yourusername/line-quality/internal/models"
	"github.com/yourusername/line-quality/internal/quality"
	"github.com/yourusername/line-quality/internal/resolver"
)

// QualityService exposes window rollups and latest-record lookups
type QualityService struct {
	aggregator *quality.Aggregator
	resolver   *resolver.Resolver
}

// NewQualityService creates a new quality service
func NewQualityService(aggregator *quality.Aggregator, res *resolver.Resolver) (*QualityService, error) {
	if aggregator == nil || res == nil {
		return nil, fmt.Errorf("aggregator and resolver are required")
	}
	return &QualityService{aggregator: aggregator, resolver: res}, nil
}

// Quality computes the rollup of one window
func (s *QualityService) Quality(ctx context.Context, req quality.Request) (*models.QualityMetrics, error) {
	started := time.Now()
	m, err := s.aggregator.Aggregate(ctx, req)
	total := 0
	if m != nil {
		total = m.TotalCount
	}
	metrics.RecordQualityAggregation(time.Since(started).Seconds(), total, err)
	return m, err
}

// UniqueTests returns the latest matching record per group
func (s *QualityService) UniqueTests(ctx context.Context, q resolver.Query) ([]models.TestEventRow, error) {
	rows, err := s.resolver.Latest(ctx, q)
	metrics.RecordUniqueTestQuery(q.Filter.String(), err)
	return rows, err
}
