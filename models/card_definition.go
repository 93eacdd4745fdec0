package models

import (
	"time"

	"github.com/lib/pq"
)

// CardDefinition represents one printed card in the library, keyed by the
// TCGdex card id (set id plus local number, e.g. "sv1-025").
type CardDefinition struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	SetID     string    `gorm:"index;size:32" json:"-"`
	Set       CardSet   `gorm:"foreignKey:SetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"set"`
	LocalID   string    `gorm:"size:16" json:"localId"`
	Name      string    `gorm:"size:255;index;not null" json:"name"`
	// ImageURL is a file name under the card image dir once the reference
	// image has been downloaded, otherwise the remote TCGdex asset URL.
	ImageURL string         `gorm:"size:512" json:"imageUrl"`
	Category string         `gorm:"size:64" json:"category"`
	Rarity   string         `gorm:"size:64" json:"rarity"`
	HP       *int           `json:"hp"`
	Types    pq.StringArray `gorm:"type:text[]" json:"types"`
}
