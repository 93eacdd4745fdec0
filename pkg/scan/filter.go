package scan

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cardscan/models"
)

// findMatchesFromText narrows the catalog using recognized text: HP comes
// from the first standalone 2-3 digit number in the top lines, the name from
// the first line whose substring query returns anything. Later lines are
// attack names and rules text, so the first hit wins.
func (s *Service) findMatchesFromText(ctx context.Context, text string) ([]models.CardDefinition, error) {
	empty := []models.CardDefinition{}
	if strings.TrimSpace(text) == "" {
		return empty, nil
	}
	lines := HeadLines(SplitLines(text), maxNameLines)
	hp := ExtractHP(lines)
	if hp != nil {
		log.Printf("SCAN detected HP %d", *hp)
	}
	for _, ln := range lines {
		if IsStructuralLabel(ln.Text) {
			continue
		}
		found, err := s.catalog.FindCandidates(ctx, ln.Text, hp, maxCandidates)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup %q: %w", ln.Text, err)
		}
		if len(found) > 0 {
			log.Printf("SCAN line %d %q matched %d cards", ln.Index, ln.Text, len(found))
			return found, nil
		}
	}
	return empty, nil
}
