package matchbatch

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable marks storage failures caused by the backing store being
// unreachable or timing out. Callers treat it as retryable, never as a
// data-integrity error.
var ErrUnavailable = errors.New("match batch store unavailable")

// Filter narrows a batch query. Empty fields match any value.
type Filter struct {
	Season     string
	Tournament string
	Week       string
}

// FullyQualified reports whether the filter pins down a single batch key
// within a league.
func (f Filter) FullyQualified() bool {
	return f.Season != "" && f.Tournament != "" && f.Week != ""
}

// Normalize trims every filter field so lookups compare against the
// canonical stored form.
func (f Filter) Normalize() Filter {
	return Filter{
		Season:     strings.TrimSpace(f.Season),
		Tournament: strings.TrimSpace(f.Tournament),
		Week:       strings.TrimSpace(f.Week),
	}
}

// Repository exposes the document-store operations for match batches.
// Batches are partitioned by league (CollectionKey) and keyed by the
// derived batch ID.
type Repository interface {
	// Upsert fully replaces the document under the batch's derived ID.
	// Reports whether a new document was created.
	Upsert(ctx context.Context, batch MatchBatch) (bool, error)

	// GetByID fetches one batch from the league partition.
	GetByID(ctx context.Context, league, id string) (MatchBatch, bool, error)

	// Query returns batches matching the filter, ordered season then
	// tournament then week, all descending. Unconstrained queries are
	// capped by the repository; a fully-qualified filter is not.
	Query(ctx context.Context, league string, filter Filter) ([]MatchBatch, error)

	// ListForScan returns the league corpus used by the pattern scan,
	// most recent first, bounded by the repository's scan cap.
	ListForScan(ctx context.Context, league string) ([]MatchBatch, error)

	// FindMatchupHistory projects records with the given home/away pairing
	// out of the league partition, most recent first.
	FindMatchupHistory(ctx context.Context, league, homeTeam, awayTeam string) ([]MatchupRecord, error)
}
