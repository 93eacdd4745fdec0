package scan

import (
	"context"
	"fmt"
	"log"

	"cardscan/models"
)

// maxCandidates caps how many catalog rows a single text query may return.
const maxCandidates = 100

// Recognizer turns a photo into recognized text. An empty string with a nil
// error means the recognizer ran fine and found no text; transport or API
// failures must surface as errors, never as empty text.
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// Catalog looks up card candidates. FindCandidates matches nameSubstring
// case-insensitively against card names, filters on hp only when non-nil and
// returns at most limit rows in a stable order.
type Catalog interface {
	FindCandidates(ctx context.Context, nameSubstring string, hp *int, limit int) ([]models.CardDefinition, error)
}

// ImageResolver locates the reference image for a card id. Absence is a
// normal outcome, not an error.
type ImageResolver interface {
	Resolve(cardID string) (string, bool)
}

// RefImage pairs a candidate id with its reference image path on disk.
type RefImage struct {
	ID   string
	Path string
}

// Reranker scores a photo against candidate reference images and returns the
// id of the best match, or "" when no candidate produced a usable score.
type Reranker interface {
	Rank(ctx context.Context, userImage []byte, refs []RefImage) (string, error)
}

// Service runs the two-stage identification pipeline: text filtering against
// the catalog, then visual re-ranking when more than one candidate survives.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	recognizer Recognizer
	catalog    Catalog
	images     ImageResolver
	ranker     Reranker
}

// NewService wires the pipeline. All four collaborators are required.
func NewService(recognizer Recognizer, catalog Catalog, images ImageResolver, ranker Reranker) *Service {
	return &Service{recognizer: recognizer, catalog: catalog, images: images, ranker: ranker}
}

// Identify maps a card photo to its catalog entries. The result is a
// singleton when the visual stage found a confident winner, the surviving
// candidate list when it did not, and empty when no text or no catalog row
// matched. An error always means an operational problem, never "no match";
// the returned slice is non-nil on every nil-error path.
func (s *Service) Identify(ctx context.Context, image []byte) ([]models.CardDefinition, error) {
	if len(image) == 0 {
		return nil, ErrNoImage
	}
	text, err := s.recognizer.RecognizeText(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	candidates, err := s.findMatchesFromText(ctx, text)
	if err != nil {
		return nil, err
	}
	// Zero or one candidate needs no visual disambiguation.
	if len(candidates) <= 1 {
		return candidates, nil
	}
	log.Printf("SCAN %d candidates after text filter, re-ranking visually", len(candidates))
	refs := make([]RefImage, 0, len(candidates))
	for _, c := range candidates {
		if path, ok := s.images.Resolve(c.ID); ok {
			refs = append(refs, RefImage{ID: c.ID, Path: path})
		}
	}
	if len(refs) == 0 {
		log.Printf("SCAN no reference images for %d candidates, returning unranked set", len(candidates))
		return candidates, nil
	}
	bestID, err := s.ranker.Rank(ctx, image, refs)
	if err != nil {
		return nil, fmt.Errorf("visual ranking: %w", err)
	}
	if bestID == "" {
		return candidates, nil
	}
	for _, c := range candidates {
		if c.ID == bestID {
			log.Printf("SCAN visual winner %s (%s)", c.ID, c.Name)
			return []models.CardDefinition{c}, nil
		}
	}
	// Ranker ids come from refs, so a miss here means a broken ranker.
	// Keep the unranked set rather than inventing a winner.
	return candidates, nil
}
