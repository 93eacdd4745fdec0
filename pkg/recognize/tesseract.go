package recognize

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"cardscan/pkg/scan"
)

// Tesseract runs OCR locally through gosseract. Used by the CLI tools and by
// deployments without a Vision API key.
type Tesseract struct {
	lang string
}

var _ scan.Recognizer = (*Tesseract)(nil)

// NewTesseract returns a recognizer for the given tesseract language code,
// defaulting to eng.
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{lang: lang}
}

// RecognizeText preprocesses and OCRs the photo. A fresh gosseract client is
// created per call; the clients are not safe for concurrent use.
func (t *Tesseract) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prepped, err := Preprocess(image)
	if err != nil {
		return "", fmt.Errorf("preprocess photo: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.lang); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(prepped); err != nil {
		return "", fmt.Errorf("load photo into ocr: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("run ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}
