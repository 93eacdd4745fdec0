package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardscan/pkg/catalog"
	"cardscan/pkg/imagestore"
	"cardscan/pkg/recognize"
	"cardscan/pkg/scan"
	"cardscan/pkg/vision"
)

func main() {
	file := flag.String("file", "", "card photo to identify")
	textOnly := flag.Bool("text", false, "print the raw OCR transcript and exit (no DB needed)")
	imageDir := flag.String("images", envOr("CARD_IMAGE_DIR", "card_images"), "reference image directory")
	flag.Parse()
	if *file == "" {
		log.Fatalf("-file required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	ctx := context.Background()
	rec := buildRecognizer()

	if *textOnly {
		text, err := rec.RecognizeText(ctx, data)
		if err != nil {
			log.Fatalf("ocr error: %v", err)
		}
		fmt.Println(text)
		return
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
	svc := scan.NewService(rec, catalog.NewStore(db), images, vision.NewMatcher(vision.DefaultOptions()))

	matches, err := svc.Identify(ctx, data)
	if err != nil {
		log.Fatalf("identify: %v", err)
	}
	if len(matches) == 0 {
		fmt.Println("no match")
		return
	}
	for _, m := range matches {
		hp := "-"
		if m.HP != nil {
			hp = fmt.Sprintf("%d", *m.HP)
		}
		fmt.Printf("%s|%s|%s|hp=%s|%s\n", m.ID, m.Name, m.Set.Name, hp, m.ImageURL)
	}
}

func buildRecognizer() scan.Recognizer {
	if key := os.Getenv("VISION_API_KEY"); key != "" {
		var opts []recognize.VisionOption
		if base := os.Getenv("VISION_BASE_URL"); base != "" {
			opts = append(opts, recognize.WithBaseURL(base))
		}
		client, err := recognize.NewVisionClient(key, opts...)
		if err != nil {
			log.Fatalf("vision client: %v", err)
		}
		return client
	}
	return recognize.NewTesseract(os.Getenv("OCR_LANG"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
