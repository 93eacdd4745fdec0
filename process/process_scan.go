package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardscan/models"
	"cardscan/pkg/catalog"
	"cardscan/pkg/imagestore"
	"cardscan/pkg/recognize"
	"cardscan/pkg/scan"
	"cardscan/pkg/vision"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var verbose bool

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Main: scans a directory of card photos, identifies each against the catalog, optional watch mode.
func main() {
	dirFlag := flag.String("dir", "incoming", "directory to scan for card photos")
	imageDir := flag.String("images", envOr("CARD_IMAGE_DIR", "card_images"), "reference image directory")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	move := flag.Bool("move", false, "Move identified photos into <dir>/processed")
	dryRun := flag.Bool("dry-run", false, "List candidate files without OCR or DB access")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	if *dryRun {
		files := listImageFiles(*dirFlag)
		log.Printf("Dry-run: found %d candidate files in %s", len(files), *dirFlag)
		for _, f := range files {
			logV("candidate %s", f)
		}
		return
	}

	db = mustInitDBFromEnv()
	images, err := imagestore.NewDir(*imageDir)
	if err != nil {
		log.Fatalf("image store: %v", err)
	}
	svc := scan.NewService(buildRecognizer(), catalog.NewStore(db), images, vision.NewMatcher(vision.DefaultOptions()))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(svc, *dirFlag, *move, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(svc, *dirFlag, *move, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

// buildRecognizer picks the OCR backend the same way the server does.
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

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	// ignore dotfiles and partial downloads
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

func watchDirectory(svc *scan.Service, dir string, move bool, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	// Use worker pool for watch events too
	go runWorkerPool(svc, dir, move, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

// worker pool orchestrator
func runWorkerPool(svc *scan.Service, dir string, move bool, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				scanOne(svc, dir, name, move)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// scanOne runs one photo through the identify pipeline and reports the outcome.
func scanOne(svc *scan.Service, dir, name string, move bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.Printf("ERROR read %s: %v", name, err)
		return
	}
	matches, err := svc.Identify(context.Background(), data)
	if err != nil {
		log.Printf("ERROR identify %s: %v", name, err)
		return
	}
	switch len(matches) {
	case 0:
		log.Printf("MISS %s no catalog match", name)
		return
	case 1:
		log.Printf("MATCH %s -> %s (%s)", name, matches[0].ID, matches[0].Name)
	default:
		log.Printf("AMBIG %s -> %d candidates (%s)", name, len(matches), joinIDs(matches))
	}
	if move {
		if err := moveToProcessed(dir, name); err != nil {
			log.Printf("WARN failed to move processed file %s: %v", name, err)
		} else {
			logV("moved processed %s", name)
		}
	}
}

func joinIDs(cards []models.CardDefinition) string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return strings.Join(ids, ", ")
}

// moveToProcessed moves a file into <dir>/processed so photos are handled only once.
// It attempts an atomic rename and falls back to copy+remove when necessary.
func moveToProcessed(dir, name string) error {
	processedDir := filepath.Join(dir, "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	src := filepath.Join(dir, name)
	dst := filepath.Join(processedDir, name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = out.Close()
	return os.Remove(src)
}
