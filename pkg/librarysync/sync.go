// Package librarysync mirrors TCGdex sets, cards and reference art into the
// local catalog so the scan pipeline has something to match against.
package librarysync

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"cardscan/models"
	"cardscan/pkg/imagestore"
	"cardscan/pkg/tcgdex"
)

// setDelay spaces set syncs to stay polite to the public API.
const setDelay = 500 * time.Millisecond

// API is the slice of the TCGdex client the sync needs.
type API interface {
	ListSets(ctx context.Context) ([]tcgdex.SetSummary, error)
	GetSet(ctx context.Context, id string) (*tcgdex.SetDetail, error)
	GetCard(ctx context.Context, id string) (*tcgdex.Card, error)
	FetchImage(ctx context.Context, imageURL string) (io.ReadCloser, error)
}

// CatalogWriter is the write surface of the catalog store.
type CatalogWriter interface {
	HasSet(ctx context.Context, id string) (bool, error)
	SaveSet(ctx context.Context, set models.CardSet) error
	SaveCards(ctx context.Context, cards []models.CardDefinition) error
}

// ImageStore persists downloaded reference art.
type ImageStore interface {
	Has(cardID string) bool
	Save(cardID string, r io.Reader) (string, error)
}

// Service drives the sync. Delay is exported so tools and tests can tune the
// politeness gap between sets.
type Service struct {
	api     API
	catalog CatalogWriter
	images  ImageStore
	Delay   time.Duration
}

// NewService wires a sync service with the default politeness delay.
func NewService(api API, catalog CatalogWriter, images ImageStore) *Service {
	return &Service{api: api, catalog: catalog, images: images, Delay: setDelay}
}

// SyncMissingSets mirrors every set not yet in the catalog. progress, when
// non-nil, receives whole-number percent values as sets complete. A failing
// set is logged and skipped so one bad set cannot stall the whole run.
func (s *Service) SyncMissingSets(ctx context.Context, progress func(int)) error {
	sets, err := s.api.ListSets(ctx)
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	missing := make([]tcgdex.SetSummary, 0, len(sets))
	for _, set := range sets {
		ok, err := s.catalog.HasSet(ctx, set.ID)
		if err != nil {
			return fmt.Errorf("check set %s: %w", set.ID, err)
		}
		if !ok {
			missing = append(missing, set)
		}
	}
	log.Printf("SYNC %d of %d sets missing", len(missing), len(sets))
	if len(missing) == 0 {
		if progress != nil {
			progress(100)
		}
		return nil
	}
	if progress != nil {
		progress(0)
	}
	for i, set := range missing {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SyncSet(ctx, set.ID); err != nil {
			log.Printf("ERROR sync set %s: %v", set.ID, err)
		}
		if progress != nil {
			progress((i + 1) * 100 / len(missing))
		}
		if i < len(missing)-1 && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
	}
	return nil
}

// SyncSet mirrors one set: the set row, each card's full record and its
// reference image. Per-card failures are logged and skipped so one bad card
// cannot abort a set.
func (s *Service) SyncSet(ctx context.Context, setID string) error {
	detail, err := s.api.GetSet(ctx, setID)
	if err != nil {
		return fmt.Errorf("fetch set %s: %w", setID, err)
	}
	set := models.CardSet{
		ID:        detail.ID,
		Name:      detail.Name,
		Series:    detail.Serie.Name,
		CardCount: detail.CardCount.Total,
		LogoURL:   tcgdex.LogoURL(detail.Logo),
	}
	if err := s.catalog.SaveSet(ctx, set); err != nil {
		return fmt.Errorf("save set %s: %w", setID, err)
	}

	cards := make([]models.CardDefinition, 0, len(detail.Cards))
	for _, brief := range detail.Cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		full, err := s.api.GetCard(ctx, brief.ID)
		if err != nil {
			log.Printf("SKIP card %s: %v", brief.ID, err)
			continue
		}
		cards = append(cards, s.buildCard(ctx, detail.ID, full))
	}
	if err := s.catalog.SaveCards(ctx, cards); err != nil {
		return fmt.Errorf("save %d cards for %s: %w", len(cards), setID, err)
	}
	log.Printf("SYNC set %s done (%d cards)", detail.ID, len(cards))
	return nil
}

// buildCard maps an API card to a catalog row, downloading its reference
// image when absent. image_url holds the local file name after a successful
// download and the remote asset URL otherwise, so a failed download still
// leaves a usable row.
func (s *Service) buildCard(ctx context.Context, setID string, full *tcgdex.Card) models.CardDefinition {
	row := models.CardDefinition{
		ID:       full.ID,
		SetID:    setID,
		LocalID:  full.LocalID,
		Name:     full.Name,
		Category: full.Category,
		Rarity:   full.Rarity,
		HP:       full.HP,
		Types:    full.Types,
	}
	remote := tcgdex.ImageURL(full.Image)
	if remote == "" {
		return row
	}
	if s.images.Has(full.ID) {
		row.ImageURL = imagestore.FileName(full.ID)
		return row
	}
	name, err := s.downloadImage(ctx, full.ID, remote)
	if err != nil {
		log.Printf("WARN image %s: %v", full.ID, err)
		row.ImageURL = remote
		return row
	}
	row.ImageURL = name
	return row
}

func (s *Service) downloadImage(ctx context.Context, cardID, imageURL string) (string, error) {
	body, err := s.api.FetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return s.images.Save(cardID, body)
}
