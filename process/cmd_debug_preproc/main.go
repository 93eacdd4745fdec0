package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cardscan/pkg/recognize"
)

// Writes the preprocessed variant of a photo next to the original and prints
// what tesseract reads from it. Handy when a card OCRs badly.
func main() {
	file := flag.String("file", "", "card photo to preprocess")
	keep := flag.Bool("keep", true, "keep the preprocessed PNG on disk")
	flag.Parse()
	if *file == "" {
		log.Fatalf("-file required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	pre, err := recognize.Preprocess(data)
	if err != nil {
		log.Fatalf("preprocess: %v", err)
	}
	out := *file + ".pre.png"
	if err := os.WriteFile(out, pre, 0o644); err != nil {
		log.Fatalf("write %s: %v", out, err)
	}
	text, err := recognize.NewTesseract(os.Getenv("OCR_LANG")).RecognizeText(context.Background(), data)
	if !*keep {
		_ = os.Remove(out)
	}
	if err != nil {
		log.Fatalf("ocr err: %v", err)
	}
	fmt.Printf("after-preproc text:\n%s\n", text)
}
