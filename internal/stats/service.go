// Package stats computes platform-wide funding statistics. Figures are
// advisory: they come from concurrent fan-out reads plus an optional Redis
// cache, so they may trail the ledger by a cache TTL. The per-case raised
// amounts stay exact; only this aggregate view trades freshness for cost.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	ledgerstore "medfund/internal/ledger/store"
	"medfund/internal/platform/redis"
	casestore "medfund/internal/registry/store"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
)

// PlatformStats is the aggregate funding snapshot.
type PlatformStats struct {
	TotalRaisedCents  int64                          `json:"total_raised_cents"`
	CasesByStatus     map[domain.CaseStatus]int      `json:"cases_by_status"`
	RaisedByTreatment map[domain.TreatmentType]int64 `json:"raised_by_treatment_cents"`
	ActiveCases       int                            `json:"active_cases"`
	FullyFundedCases  int                            `json:"fully_funded_cases"`
	ComputedAt        time.Time                      `json:"computed_at"`
}

// Service computes and caches platform statistics.
type Service struct {
	cases     casestore.CaseStore
	donations ledgerstore.DonationStore
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *slog.Logger
}

const cacheKey = "medfund:stats:platform"

// New constructs the stats service. cache may be nil; stats are then
// recomputed on every request.
func New(cases casestore.CaseStore, donations ledgerstore.DonationStore, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		cases:     cases,
		donations: donations,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// PlatformStats returns the aggregate snapshot, serving from cache when
// fresh. Cache failures degrade to recomputation, never to an error.
func (s *Service) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, stats)
	return stats, nil
}

// compute fans out the three independent reads concurrently.
func (s *Service) compute(ctx context.Context) (*PlatformStats, error) {
	var (
		total        domain.Money
		totalsByCase map[domain.CaseID]domain.Money
		byStatus     map[domain.CaseStatus]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.donations.TotalCompleted(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		totalsByCase, err = s.donations.TotalsByCase(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.cases.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute platform stats")
	}

	byTreatment := make(map[domain.TreatmentType]int64)
	for caseID, raised := range totalsByCase {
		c, err := s.cases.FindByID(ctx, caseID)
		if err != nil {
			// The case vanished between reads; advisory figures tolerate it.
			continue
		}
		byTreatment[c.TreatmentType] += raised.Cents()
	}

	return &PlatformStats{
		TotalRaisedCents:  total.Cents(),
		CasesByStatus:     byStatus,
		RaisedByTreatment: byTreatment,
		ActiveCases:       byStatus[domain.CaseStatusActive],
		FullyFundedCases:  byStatus[domain.CaseStatusFunded],
		ComputedAt:        time.Now().UTC(),
	}, nil
}

func (s *Service) fromCache(ctx context.Context) *PlatformStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats PlatformStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed stats cache entry", "error", err.Error())
		return nil
	}
	return &stats
}

func (s *Service) toCache(ctx context.Context, stats *PlatformStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "stats cache write failed", "error", err.Error())
	}
}
