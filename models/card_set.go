package models

import "time"

// CardSet represents one TCGdex expansion set (e.g. id "sv1").
type CardSet struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Series    string    `gorm:"size:255" json:"series"`
	CardCount int       `json:"cardCount"`
	LogoURL   string    `gorm:"size:512" json:"logoUrl"`
}
