package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/matchwatch/matchwatch/internal/domain/pattern"
)

// QueryService serves the read paths: filtered listing, point lookup with
// pattern alerts, and head-to-head matchup history.
type QueryService struct {
	repo matchbatch.Repository
	scan *PatternScanService
}

func NewQueryService(repo matchbatch.Repository, scan *PatternScanService) *QueryService {
	return &QueryService{
		repo: repo,
		scan: scan,
	}
}

// BatchWithAlerts pairs a stored batch with the alerts raised when it is
// classified against the rest of its league.
type BatchWithAlerts struct {
	Batch  matchbatch.MatchBatch
	Alerts []pattern.Alert
}

// Query lists batches for a league, newest coordinates first. The filter may
// be empty or partial; each provided field narrows the result.
func (s *QueryService) Query(ctx context.Context, league string, filter matchbatch.Filter) ([]matchbatch.MatchBatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Query")
	defer span.End()

	league = matchbatch.NormalizeLeague(league)
	if league == "" {
		return nil, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}

	batches, err := s.repo.Query(ctx, league, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("query batches for league %s: %w", league, err)
	}
	return batches, nil
}

// GetWithAlerts resolves a fully qualified coordinate to its stored batch
// and runs the pattern scan against the league corpus. A miss is ErrNotFound.
func (s *QueryService) GetWithAlerts(ctx context.Context, league string, filter matchbatch.Filter) (BatchWithAlerts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetWithAlerts")
	defer span.End()

	league = matchbatch.NormalizeLeague(league)
	if league == "" {
		return BatchWithAlerts{}, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	filter = filter.Normalize()
	if !filter.FullyQualified() {
		return BatchWithAlerts{}, fmt.Errorf("%w: season, tournament and week are required", ErrInvalidInput)
	}

	id := matchbatch.BatchID(league, filter.Season, filter.Tournament, filter.Week)
	batch, found, err := s.repo.GetByID(ctx, league, id)
	if err != nil {
		return BatchWithAlerts{}, fmt.Errorf("get batch %s: %w", id, err)
	}
	if !found {
		return BatchWithAlerts{}, fmt.Errorf("%w: batch %s", ErrNotFound, id)
	}

	alerts, err := s.scan.Scan(ctx, batch)
	if err != nil {
		return BatchWithAlerts{}, fmt.Errorf("scan batch %s: %w", id, err)
	}

	return BatchWithAlerts{Batch: batch, Alerts: alerts}, nil
}

// GetByID returns a single stored batch addressed by its derived key.
func (s *QueryService) GetByID(ctx context.Context, league, id string) (matchbatch.MatchBatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetByID")
	defer span.End()

	league = matchbatch.NormalizeLeague(league)
	id = strings.TrimSpace(id)
	if league == "" || id == "" {
		return matchbatch.MatchBatch{}, fmt.Errorf("%w: league and batch id are required", ErrInvalidInput)
	}

	batch, found, err := s.repo.GetByID(ctx, league, id)
	if err != nil {
		return matchbatch.MatchBatch{}, fmt.Errorf("get batch %s: %w", id, err)
	}
	if !found {
		return matchbatch.MatchBatch{}, fmt.Errorf("%w: batch %s", ErrNotFound, id)
	}
	return batch, nil
}

// MatchupHistory returns the recorded results where homeTeam hosted awayTeam
// in the given league. Sides are not interchangeable.
func (s *QueryService) MatchupHistory(ctx context.Context, league, homeTeam, awayTeam string) ([]matchbatch.MatchupRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.MatchupHistory")
	defer span.End()

	league = matchbatch.NormalizeLeague(league)
	if league == "" {
		return nil, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	homeTeam = matchbatch.NormalizeTeam(homeTeam)
	awayTeam = matchbatch.NormalizeTeam(awayTeam)
	if homeTeam == matchbatch.UnknownTeam || awayTeam == matchbatch.UnknownTeam {
		return nil, fmt.Errorf("%w: homeTeam and awayTeam are required", ErrInvalidInput)
	}

	records, err := s.repo.FindMatchupHistory(ctx, league, homeTeam, awayTeam)
	if err != nil {
		return nil, fmt.Errorf("matchup history %s vs %s: %w", homeTeam, awayTeam, err)
	}
	return records, nil
}
