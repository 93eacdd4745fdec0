package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"cardscan/pkg/catalog"
	"cardscan/pkg/imagestore"
	"cardscan/pkg/recognize"
	"cardscan/pkg/scan"
	"cardscan/pkg/vision"
)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()

	// Support a lightweight migrate command: `./cardscan migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration completed")
		return
	}

	initDB()

	images, err := imagestore.NewWatched(cardImageDir())
	if err != nil {
		log.Fatal("image store: ", err)
	}
	defer images.Close()

	store := catalog.NewStore(db)
	scanner = scan.NewService(buildRecognizer(), store, images, vision.NewMatcher(vision.DefaultOptions()))

	if n, err := store.CountCards(context.Background()); err == nil {
		log.Printf("card library holds %d definitions, %d reference images on disk", n, images.Count())
	}

	r := gin.Default()

	setupRoutes(r)

	r.Run(":" + serverPort())
}

// buildRecognizer picks the OCR backend: Google Vision when VISION_API_KEY is
// set, local tesseract otherwise.
func buildRecognizer() scan.Recognizer {
	if key := os.Getenv("VISION_API_KEY"); key != "" {
		var opts []recognize.VisionOption
		if base := os.Getenv("VISION_BASE_URL"); base != "" {
			opts = append(opts, recognize.WithBaseURL(base))
		}
		client, err := recognize.NewVisionClient(key, opts...)
		if err != nil {
			log.Fatal("vision client: ", err)
		}
		return client
	}
	log.Println("VISION_API_KEY not set, using local tesseract")
	return recognize.NewTesseract(os.Getenv("OCR_LANG"))
}

// serverPort returns the listen port (configurable via PORT env).
func serverPort() string {
	if v := os.Getenv("PORT"); v != "" {
		return v
	}
	return "8080"
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
