package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardscan/models"
	"cardscan/pkg/catalog"
	"cardscan/pkg/imagestore"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

type seedCard struct {
	id, localID, name, category, rarity string
	hp                                  int
	types                               []string
}

var demoSets = []models.CardSet{
	{ID: "demo1", Name: "Demo Base", Series: "Demo", CardCount: 4},
	{ID: "demo2", Name: "Demo Reprints", Series: "Demo", CardCount: 1},
}

// demo2 repeats Charizard on purpose so a scan of it exercises the visual stage.
var demoCards = map[string][]seedCard{
	"demo1": {
		{"demo1-1", "1", "Pikachu", "Pokemon", "Common", 60, []string{"Lightning"}},
		{"demo1-2", "2", "Charizard", "Pokemon", "Rare", 120, []string{"Fire"}},
		{"demo1-3", "3", "Bulbasaur", "Pokemon", "Common", 40, []string{"Grass"}},
		{"demo1-4", "4", "Blastoise", "Pokemon", "Rare", 100, []string{"Water"}},
	},
	"demo2": {
		{"demo2-1", "1", "Charizard", "Pokemon", "Rare", 120, []string{"Fire"}},
	},
}

func main() {
	dir := flag.String("dir", envOr("CARD_IMAGE_DIR", "card_images"), "reference image directory")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB or disk")
	flag.Parse()

	if *dry {
		for _, set := range demoSets {
			for _, c := range demoCards[set.ID] {
				fmt.Printf("WOULD seed %s (%s) into %s\n", c.id, c.name, set.ID)
			}
		}
		fmt.Println("pass -dry-run=false to write")
		return
	}

	gdb := mustDBFromEnv()
	store := catalog.NewStore(gdb)
	ctx := context.Background()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create image dir: %v", err)
	}
	for _, set := range demoSets {
		if err := store.SaveSet(ctx, set); err != nil {
			log.Fatalf("save set %s: %v", set.ID, err)
		}
		var defs []models.CardDefinition
		for _, c := range demoCards[set.ID] {
			name := imagestore.FileName(c.id)
			if err := writePlaceholderArt(filepath.Join(*dir, name), c.id); err != nil {
				log.Fatalf("placeholder art %s: %v", c.id, err)
			}
			hp := c.hp
			defs = append(defs, models.CardDefinition{
				ID:       c.id,
				SetID:    set.ID,
				LocalID:  c.localID,
				Name:     c.name,
				ImageURL: name,
				Category: c.category,
				Rarity:   c.rarity,
				HP:       &hp,
				Types:    c.types,
			})
		}
		if err := store.SaveCards(ctx, defs); err != nil {
			log.Fatalf("save cards %s: %v", set.ID, err)
		}
		fmt.Printf("SEEDED set=%s cards=%d\n", set.ID, len(defs))
	}
}

// writePlaceholderArt renders a deterministic block pattern per card so the
// feature matcher has corners to latch onto even for seeded demo data.
func writePlaceholderArt(path, cardID string) error {
	const w, h = 256, 352
	hs := fnv.New64a()
	_, _ = hs.Write([]byte(cardID))
	rng := rand.New(rand.NewSource(int64(hs.Sum64())))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 16 {
		for x := 0; x < w; x += 16 {
			c := color.NRGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255}
			for yy := y; yy < y+16 && yy < h; yy++ {
				for xx := x; xx < x+16 && xx < w; xx++ {
					img.SetNRGBA(xx, yy, c)
				}
			}
		}
	}
	return imaging.Save(img, path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
