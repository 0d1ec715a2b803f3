package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
)

// BatchService owns the ingestion path: validate, normalize, upsert.
type BatchService struct {
	repo matchbatch.Repository
	now  func() time.Time
}

func NewBatchService(repo matchbatch.Repository) *BatchService {
	return &BatchService{
		repo: repo,
		now:  time.Now,
	}
}

// IngestBatchInput is the canonical ingestion payload. Field aliasing from
// the wire formats is resolved at the HTTP boundary; this layer sees one
// representation only.
type IngestBatchInput struct {
	League     string
	Season     string
	Tournament string
	Week       string
	Matches    []matchbatch.MatchRecord
}

// Ingest validates and normalizes a batch, then fully replaces any stored
// document under the same derived key. Reports the stored batch and whether
// it was newly created.
func (s *BatchService) Ingest(ctx context.Context, input IngestBatchInput) (matchbatch.MatchBatch, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BatchService.Ingest")
	defer span.End()

	if strings.TrimSpace(input.League) == "" {
		return matchbatch.MatchBatch{}, false, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	if len(input.Matches) == 0 {
		return matchbatch.MatchBatch{}, false, fmt.Errorf("%w: match list cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Season) == "" || strings.TrimSpace(input.Tournament) == "" || strings.TrimSpace(input.Week) == "" {
		return matchbatch.MatchBatch{}, false, fmt.Errorf("%w: season, tournament and week are required", ErrInvalidInput)
	}

	batch := matchbatch.MatchBatch{
		League:     input.League,
		Season:     input.Season,
		Tournament: input.Tournament,
		Week:       input.Week,
		Matches:    append([]matchbatch.MatchRecord(nil), input.Matches...),
		UpdatedAt:  s.now().UTC(),
	}
	batch.Normalize()

	created, err := s.repo.Upsert(ctx, batch)
	if err != nil {
		return matchbatch.MatchBatch{}, false, fmt.Errorf("upsert batch %s: %w", batch.ID, err)
	}

	return batch, created, nil
}
