// Package catalog is the gorm-backed card library behind the scan pipeline
// and the TCGdex sync.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardscan/models"
	"cardscan/pkg/scan"
)

// Store wraps a gorm connection with the catalog queries.
type Store struct {
	db *gorm.DB
}

var _ scan.Catalog = (*Store)(nil)

// NewStore returns a Store over an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindCandidates implements the pipeline catalog boundary: case-insensitive
// name substring, exact HP only when requested, only rows that have a
// reference image URL, ordered by id so results are stable between runs.
func (s *Store) FindCandidates(ctx context.Context, nameSubstring string, hp *int, limit int) ([]models.CardDefinition, error) {
	q := s.db.WithContext(ctx).
		Preload("Set").
		Where("image_url IS NOT NULL AND image_url <> ''").
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(nameSubstring)+"%").
		Order("id").
		Limit(limit)
	if hp != nil {
		q = q.Where("hp = ?", *hp)
	}
	var cards []models.CardDefinition
	if err := q.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	return cards, nil
}

// HasSet reports whether a set row exists.
func (s *Store) HasSet(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CardSet{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count set %s: %w", id, err)
	}
	return n > 0, nil
}

// SaveSet upserts one set row.
func (s *Store) SaveSet(ctx context.Context, set models.CardSet) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&set).Error; err != nil {
		return fmt.Errorf("save set %s: %w", set.ID, err)
	}
	return nil
}

// SaveCards upserts card rows in batches. Re-syncing a set refreshes rows in
// place.
func (s *Store) SaveCards(ctx context.Context, cards []models.CardDefinition) error {
	if len(cards) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(cards, 100).Error
	if err != nil {
		return fmt.Errorf("save %d cards: %w", len(cards), err)
	}
	return nil
}

// CountCards returns the total number of card rows.
func (s *Store) CountCards(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CardDefinition{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// CountSets returns the total number of set rows.
func (s *Store) CountSets(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CardSet{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count sets: %w", err)
	}
	return n, nil
}

// SetReport aggregates one set's card count and how many cards carry a local
// reference image (image_url holding a file name instead of a remote URL).
type SetReport struct {
	SetID     string
	Name      string
	Cards     int64
	WithImage int64
}

// SetReports returns per-set coverage, ordered by set id.
func (s *Store) SetReports(ctx context.Context) ([]SetReport, error) {
	var rows []SetReport
	err := s.db.WithContext(ctx).Raw(`
		SELECT cs.id AS set_id, cs.name AS name,
		       COUNT(cd.id) AS cards,
		       COUNT(cd.id) FILTER (WHERE cd.image_url <> '' AND cd.image_url NOT LIKE 'http%') AS with_image
		FROM card_sets cs
		LEFT JOIN card_definitions cd ON cd.set_id = cs.id
		GROUP BY cs.id, cs.name
		ORDER BY cs.id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("set reports: %w", err)
	}
	return rows, nil
}
