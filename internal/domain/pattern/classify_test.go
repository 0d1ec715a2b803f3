package pattern

import (
	"testing"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
)

func TestClassify_IdenticalContentIsExact(t *testing.T) {
	current := Compute(sampleMatches())
	candidate := Compute(sampleMatches())

	kind, ok := Classify(current, candidate)
	if !ok || kind != KindExactSequence {
		t.Fatalf("expected %s, got %s (ok=%t)", KindExactSequence, kind, ok)
	}
}

func TestClassify_ReorderedIsRearranged(t *testing.T) {
	current := Compute(sampleMatches())

	reordered := sampleMatches()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	candidate := Compute(reordered)

	kind, ok := Classify(current, candidate)
	if !ok || kind != KindRearrangedSequence {
		t.Fatalf("expected %s, got %s (ok=%t)", KindRearrangedSequence, kind, ok)
	}
}

func TestClassify_SingleMatchReorderIsExact(t *testing.T) {
	// With one match, exact and scrambled coincide; the stronger rule wins.
	single := []matchbatch.MatchRecord{{HomeTeam: "A", AwayTeam: "B", HomeScore: 2, AwayScore: 1}}

	kind, ok := Classify(Compute(single), Compute(single))
	if !ok || kind != KindExactSequence {
		t.Fatalf("expected %s, got %s (ok=%t)", KindExactSequence, kind, ok)
	}
}

func TestClassify_SideSwapWithScoresIsTeamPatternOnly(t *testing.T) {
	current := Compute([]matchbatch.MatchRecord{
		{HomeTeam: "A", AwayTeam: "B", HomeScore: 2, AwayScore: 1},
	})
	candidate := Compute([]matchbatch.MatchRecord{
		{HomeTeam: "B", AwayTeam: "A", HomeScore: 2, AwayScore: 1},
	})

	kind, ok := Classify(current, candidate)
	if !ok {
		t.Fatalf("expected a classification for a side-swapped pairing")
	}
	if kind != KindTeamPattern {
		t.Fatalf("expected %s, got %s", KindTeamPattern, kind)
	}
}

func TestClassify_SamePairingsDifferentScoresIsTeamPattern(t *testing.T) {
	current := Compute(sampleMatches())

	rescored := sampleMatches()
	for i := range rescored {
		rescored[i].HomeScore += 3
	}
	candidate := Compute(rescored)

	// Same pairings, same sides, same order. PairingScrambled also matches,
	// and it outranks PairingSeq in the chain.
	kind, ok := Classify(current, candidate)
	if !ok || kind != KindTeamPattern {
		t.Fatalf("expected %s, got %s (ok=%t)", KindTeamPattern, kind, ok)
	}
}

func TestClassify_SameScoresUnrelatedTeamsIsScorePattern(t *testing.T) {
	current := Compute(sampleMatches())

	unrelated := []matchbatch.MatchRecord{
		{HomeTeam: "AJAX", AwayTeam: "PSV", HomeScore: 2, AwayScore: 1},
		{HomeTeam: "FEYENOORD", AwayTeam: "UTRECHT", HomeScore: 0, AwayScore: 0},
		{HomeTeam: "TWENTE", AwayTeam: "HEERENVEEN", HomeScore: 3, AwayScore: 2},
	}
	candidate := Compute(unrelated)

	kind, ok := Classify(current, candidate)
	if !ok || kind != KindScorePattern {
		t.Fatalf("expected %s, got %s (ok=%t)", KindScorePattern, kind, ok)
	}
}

func TestClassify_NoOverlapNoAlert(t *testing.T) {
	current := Compute([]matchbatch.MatchRecord{
		{HomeTeam: "A", AwayTeam: "B", HomeScore: 2, AwayScore: 1},
	})
	candidate := Compute([]matchbatch.MatchRecord{
		{HomeTeam: "C", AwayTeam: "D", HomeScore: 4, AwayScore: 4},
	})

	if kind, ok := Classify(current, candidate); ok {
		t.Fatalf("expected no classification, got %s", kind)
	}
}

func TestClassify_SwappedSidesNeverExactOrRearranged(t *testing.T) {
	current := Compute([]matchbatch.MatchRecord{
		{HomeTeam: "A", AwayTeam: "B", HomeScore: 2, AwayScore: 1},
		{HomeTeam: "C", AwayTeam: "D", HomeScore: 1, AwayScore: 0},
	})
	candidate := Compute([]matchbatch.MatchRecord{
		{HomeTeam: "B", AwayTeam: "A", HomeScore: 2, AwayScore: 1},
		{HomeTeam: "D", AwayTeam: "C", HomeScore: 1, AwayScore: 0},
	})

	kind, ok := Classify(current, candidate)
	if !ok {
		t.Fatalf("expected a team pattern classification")
	}
	if kind == KindExactSequence || kind == KindRearrangedSequence || kind == KindIdenticalFixtures {
		t.Fatalf("side swap must not classify as %s", kind)
	}
	if kind != KindTeamPattern {
		t.Fatalf("expected %s, got %s", KindTeamPattern, kind)
	}
}
