package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/matchwatch/matchwatch/internal/domain/pattern"
	"github.com/panjf2000/ants/v2"
)

// PatternScanService classifies a batch against the rest of its league
// corpus. The engine itself is pure; this service only fans the fingerprint
// computation out over a worker pool and keeps alert order stable.
type PatternScanService struct {
	repo    matchbatch.Repository
	workers int
}

func NewPatternScanService(repo matchbatch.Repository, workers int) *PatternScanService {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PatternScanService{
		repo:    repo,
		workers: workers,
	}
}

// Scan fetches the league corpus, computes candidate fingerprints
// concurrently and classifies each candidate against the current batch.
// Candidates are matched against the current batch by ID and skipped. The
// result holds at most one alert per candidate, in corpus order.
func (s *PatternScanService) Scan(ctx context.Context, current matchbatch.MatchBatch) ([]pattern.Alert, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PatternScanService.Scan")
	defer span.End()

	corpus, err := s.repo.ListForScan(ctx, current.League)
	if err != nil {
		return nil, fmt.Errorf("list scan corpus for league %s: %w", current.League, err)
	}

	candidates := make([]matchbatch.MatchBatch, 0, len(corpus))
	for _, item := range corpus {
		if item.ID == current.ID {
			continue
		}
		candidates = append(candidates, item)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	currentFP := pattern.Compute(current.Matches)

	fingerprints := make([]pattern.Fingerprints, len(candidates))
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create scan worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for idx := range candidates {
		idx := idx
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			fingerprints[idx] = pattern.Compute(candidates[idx].Matches)
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit fingerprint task: %w", err)
		}
	}
	workers.Wait()

	alerts := make([]pattern.Alert, 0, len(candidates))
	for idx, candidate := range candidates {
		kind, ok := pattern.Classify(currentFP, fingerprints[idx])
		if !ok {
			continue
		}
		alerts = append(alerts, pattern.Alert{
			Kind:       kind,
			BatchID:    candidate.ID,
			Season:     candidate.Season,
			Tournament: candidate.Tournament,
			Week:       candidate.Week,
		})
	}

	return alerts, nil
}
