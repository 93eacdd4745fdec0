package vision

import "testing"

func TestPickBestStrictMax(t *testing.T) {
	scores := []Score{
		{ID: "base1-4", Good: 10, Scored: true},
		{ID: "base2-4", Good: 25, Scored: true},
		{ID: "sv3-125", Good: 7, Scored: true},
	}
	best, ok := pickBest(scores)
	if !ok || best != "base2-4" {
		t.Fatalf("expected base2-4 got %q ok=%v", best, ok)
	}
}

func TestPickBestTieKeepsFirstVisited(t *testing.T) {
	scores := []Score{
		{ID: "base1-4", Good: 12, Scored: true},
		{ID: "base2-4", Good: 12, Scored: true},
	}
	best, ok := pickBest(scores)
	if !ok || best != "base1-4" {
		t.Fatalf("tie must keep the first candidate, got %q ok=%v", best, ok)
	}
}

func TestPickBestZeroScoreStillCompetes(t *testing.T) {
	scores := []Score{{ID: "base1-4", Good: 0, Scored: true}}
	best, ok := pickBest(scores)
	if !ok || best != "base1-4" {
		t.Fatalf("a scored zero competes, got %q ok=%v", best, ok)
	}
}

func TestPickBestSkipsUnscored(t *testing.T) {
	scores := []Score{
		{ID: "base1-4"},
		{ID: "base2-4", Good: 3, Scored: true},
	}
	best, ok := pickBest(scores)
	if !ok || best != "base2-4" {
		t.Fatalf("unscored candidates must not compete, got %q ok=%v", best, ok)
	}

	if best, ok := pickBest([]Score{{ID: "base1-4"}, {ID: "base2-4"}}); ok || best != "" {
		t.Fatalf("nothing scored means no winner, got %q ok=%v", best, ok)
	}
}
