package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/matchwatch/matchwatch/internal/infrastructure/repository/memory"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBatchService_IngestCreatesThenReplaces(t *testing.T) {
	repo := memory.NewBatchRepository()
	service := NewBatchService(repo)
	service.now = fixedClock(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC))

	input := IngestBatchInput{
		League:     "English",
		Season:     "2024",
		Tournament: "1",
		Week:       "3",
		Matches: []matchbatch.MatchRecord{
			{HomeTeam: "arsenal", AwayTeam: "chelsea", HomeScore: 2, AwayScore: 1},
		},
	}

	batch, created, err := service.Ingest(context.Background(), input)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !created {
		t.Fatalf("first ingest must create")
	}
	if batch.ID != "english-2024-1-3" {
		t.Fatalf("unexpected batch id: %q", batch.ID)
	}
	if batch.Matches[0].HomeTeam != "ARSENAL" {
		t.Fatalf("team names must be normalized, got %q", batch.Matches[0].HomeTeam)
	}

	input.Matches = []matchbatch.MatchRecord{
		{HomeTeam: "spurs", AwayTeam: "everton", HomeScore: 0, AwayScore: 0},
	}
	replaced, created, err := service.Ingest(context.Background(), input)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if created {
		t.Fatalf("second ingest under the same key must replace, not create")
	}

	stored, found, err := repo.GetByID(context.Background(), "english", replaced.ID)
	if err != nil || !found {
		t.Fatalf("stored batch missing: found=%v err=%v", found, err)
	}
	if len(stored.Matches) != 1 || stored.Matches[0].HomeTeam != "SPURS" {
		t.Fatalf("replacement must fully overwrite the match list, got %+v", stored.Matches)
	}
}

func TestBatchService_IngestValidation(t *testing.T) {
	service := NewBatchService(memory.NewBatchRepository())

	cases := []struct {
		name  string
		input IngestBatchInput
	}{
		{"missing league", IngestBatchInput{
			Season: "2024", Tournament: "1", Week: "3",
			Matches: []matchbatch.MatchRecord{{HomeTeam: "A", AwayTeam: "B"}},
		}},
		{"empty matches", IngestBatchInput{
			League: "english", Season: "2024", Tournament: "1", Week: "3",
		}},
		{"missing season", IngestBatchInput{
			League: "english", Tournament: "1", Week: "3",
			Matches: []matchbatch.MatchRecord{{HomeTeam: "A", AwayTeam: "B"}},
		}},
		{"blank week", IngestBatchInput{
			League: "english", Season: "2024", Tournament: "1", Week: "   ",
			Matches: []matchbatch.MatchRecord{{HomeTeam: "A", AwayTeam: "B"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := service.Ingest(context.Background(), tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}
