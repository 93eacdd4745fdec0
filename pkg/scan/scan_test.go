package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cardscan/models"
)

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) RecognizeText(ctx context.Context, image []byte) (string, error) {
	return f.text, f.err
}

type fakeCatalog struct {
	byName map[string][]models.CardDefinition
	calls  []string
	lastHP *int
	err    error
}

func (f *fakeCatalog) FindCandidates(ctx context.Context, name string, hp *int, limit int) ([]models.CardDefinition, error) {
	f.calls = append(f.calls, name)
	f.lastHP = hp
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[strings.ToLower(name)], nil
}

type fakeResolver struct {
	paths map[string]string
	calls int
}

func (f *fakeResolver) Resolve(cardID string) (string, bool) {
	f.calls++
	p, ok := f.paths[cardID]
	return p, ok
}

type fakeRanker struct {
	best string
	err  error
	refs []RefImage
}

func (f *fakeRanker) Rank(ctx context.Context, userImage []byte, refs []RefImage) (string, error) {
	f.refs = refs
	return f.best, f.err
}

func card(id, name string, hp int) models.CardDefinition {
	return models.CardDefinition{ID: id, Name: name, HP: &hp}
}

func TestIdentifySingleCandidateSkipsVisualStage(t *testing.T) {
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{
		"pikachu": {card("sv1-025", "Pikachu", 60)},
	}}
	res := &fakeResolver{paths: map[string]string{"sv1-025": "/img/sv1-025.png"}}
	rk := &fakeRanker{}
	svc := NewService(&fakeRecognizer{text: "Pikachu\n60\nThunder Shock"}, cat, res, rk)

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sv1-025" {
		t.Fatalf("expected single sv1-025 got %+v", got)
	}
	if res.calls != 0 {
		t.Fatalf("reference images must not be read for a single candidate")
	}
	if rk.refs != nil {
		t.Fatalf("re-ranker must not run for a single candidate")
	}
	if cat.lastHP == nil || *cat.lastHP != 60 {
		t.Fatalf("expected HP 60 passed to catalog, got %v", cat.lastHP)
	}
}

func TestIdentifyRanksReprints(t *testing.T) {
	reprints := []models.CardDefinition{
		card("base1-4", "Charizard", 120),
		card("base2-4", "Charizard", 120),
		card("sv3-125", "Charizard", 120),
	}
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{"charizard": reprints}}
	res := &fakeResolver{paths: map[string]string{
		"base1-4": "/img/base1-4.png",
		"base2-4": "/img/base2-4.png",
		"sv3-125": "/img/sv3-125.png",
	}}
	rk := &fakeRanker{best: "base2-4"}
	svc := NewService(&fakeRecognizer{text: "Basic\nCharizard\n120"}, cat, res, rk)

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "base2-4" {
		t.Fatalf("expected visual winner base2-4 got %+v", got)
	}
	if len(rk.refs) != 3 {
		t.Fatalf("expected 3 reference images ranked, got %d", len(rk.refs))
	}
	for _, q := range cat.calls {
		if strings.EqualFold(q, "basic") {
			t.Fatalf("structural label line must not be queried, calls=%v", cat.calls)
		}
	}
}

func TestIdentifyEmptyTextSkipsCatalog(t *testing.T) {
	cat := &fakeCatalog{}
	svc := NewService(&fakeRecognizer{text: ""}, cat, &fakeResolver{}, &fakeRanker{})

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result got %+v", got)
	}
	if len(cat.calls) != 0 {
		t.Fatalf("catalog must not be queried for empty text, calls=%v", cat.calls)
	}
}

func TestIdentifyFirstMatchingLineWins(t *testing.T) {
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{
		"raichu":  {card("sv1-026", "Raichu", 120)},
		"pikachu": {card("sv1-025", "Pikachu", 60)},
	}}
	svc := NewService(&fakeRecognizer{text: "Raichu\nPikachu"}, cat, &fakeResolver{}, &fakeRanker{})

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sv1-026" {
		t.Fatalf("expected first line's match sv1-026 got %+v", got)
	}
	if len(cat.calls) != 1 {
		t.Fatalf("iteration must stop at the first hit, calls=%v", cat.calls)
	}
}

func TestIdentifyNoImage(t *testing.T) {
	svc := NewService(&fakeRecognizer{}, &fakeCatalog{}, &fakeResolver{}, &fakeRanker{})
	if _, err := svc.Identify(context.Background(), nil); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage got %v", err)
	}
}

func TestIdentifyRecognizerErrorPropagates(t *testing.T) {
	boom := errors.New("vision quota exceeded")
	svc := NewService(&fakeRecognizer{err: boom}, &fakeCatalog{}, &fakeResolver{}, &fakeRanker{})

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if !errors.Is(err, boom) {
		t.Fatalf("recognizer failure must propagate, got %v", err)
	}
	if got != nil {
		t.Fatalf("no result expected on failure, got %+v", got)
	}
}

func TestIdentifyCatalogErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	cat := &fakeCatalog{err: boom}
	svc := NewService(&fakeRecognizer{text: "Pikachu"}, cat, &fakeResolver{}, &fakeRanker{})

	if _, err := svc.Identify(context.Background(), []byte("photo")); !errors.Is(err, boom) {
		t.Fatalf("catalog failure must propagate, got %v", err)
	}
}

func TestIdentifyNoReferenceImagesKeepsSet(t *testing.T) {
	two := []models.CardDefinition{card("a-1", "Mew", 60), card("b-1", "Mew", 60)}
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{"mew": two}}
	rk := &fakeRanker{best: "a-1"}
	svc := NewService(&fakeRecognizer{text: "Mew\n60"}, cat, &fakeResolver{}, rk)

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected unranked pair got %+v", got)
	}
	if rk.refs != nil {
		t.Fatalf("re-ranker must not run without reference images")
	}
}

func TestIdentifyNoVisualSignalKeepsSet(t *testing.T) {
	two := []models.CardDefinition{card("a-1", "Mew", 60), card("b-1", "Mew", 60)}
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{"mew": two}}
	res := &fakeResolver{paths: map[string]string{"a-1": "/img/a-1.png", "b-1": "/img/b-1.png"}}
	svc := NewService(&fakeRecognizer{text: "Mew\n60"}, cat, res, &fakeRanker{best: ""})

	got, err := svc.Identify(context.Background(), []byte("photo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected full candidate set got %+v", got)
	}
}

func TestIdentifyRankerErrorPropagates(t *testing.T) {
	two := []models.CardDefinition{card("a-1", "Mew", 60), card("b-1", "Mew", 60)}
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{"mew": two}}
	res := &fakeResolver{paths: map[string]string{"a-1": "/img/a-1.png", "b-1": "/img/b-1.png"}}
	svc := NewService(&fakeRecognizer{text: "Mew\n60"}, cat, res, &fakeRanker{err: ErrImageDecode})

	if _, err := svc.Identify(context.Background(), []byte("photo")); !errors.Is(err, ErrImageDecode) {
		t.Fatalf("undecodable photo must fail the request, got %v", err)
	}
}

func TestIdentifyNoHPQueriesWithNil(t *testing.T) {
	cat := &fakeCatalog{byName: map[string][]models.CardDefinition{
		"mewtwo": {card("sv2-150", "Mewtwo", 150)},
	}}
	svc := NewService(&fakeRecognizer{text: "Mewtwo"}, cat, &fakeResolver{}, &fakeRanker{})

	if _, err := svc.Identify(context.Background(), []byte("photo")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.lastHP != nil {
		t.Fatalf("expected nil HP filter, got %d", *cat.lastHP)
	}
}
