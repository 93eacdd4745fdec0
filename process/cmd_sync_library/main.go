package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardscan/pkg/catalog"
	"cardscan/pkg/imagestore"
	"cardscan/pkg/librarysync"
	"cardscan/pkg/tcgdex"
)

func main() {
	setID := flag.String("set", "", "sync a single set by id (e.g. base1)")
	missing := flag.Bool("missing", false, "sync every set not yet in the catalog")
	imageDir := flag.String("images", envOr("CARD_IMAGE_DIR", "card_images"), "reference image directory")
	delay := flag.Duration("delay", 500*time.Millisecond, "pause between sets when syncing many")
	flag.Parse()
	if *setID == "" && !*missing {
		log.Fatalf("nothing to do: pass -set <id> or -missing")
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	images, err := imagestore.NewDir(*imageDir)
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	var apiOpts []tcgdex.Option
	if base := os.Getenv("TCGDEX_BASE_URL"); base != "" {
		apiOpts = append(apiOpts, tcgdex.WithBaseURL(base))
	}
	svc := librarysync.NewService(tcgdex.New(apiOpts...), catalog.NewStore(db), images)
	svc.Delay = *delay

	// Ctrl+C stops between cards/sets instead of killing mid-download.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *setID != "" {
		if err := svc.SyncSet(ctx, *setID); err != nil {
			log.Fatalf("sync set %s: %v", *setID, err)
		}
		return
	}
	err = svc.SyncMissingSets(ctx, func(pct int) {
		log.Printf("SYNC %d%%", pct)
	})
	if err != nil {
		log.Fatalf("sync missing sets: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
