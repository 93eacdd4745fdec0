// Package recognize provides the text recognizers behind card scanning: the
// Google Vision API used in production and a local tesseract fallback.
package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cardscan/pkg/scan"
)

const (
	defaultVisionBaseURL = "https://vision.googleapis.com"
	defaultVisionTimeout = 30 * time.Second
)

// VisionClient calls the Google Cloud Vision TEXT_DETECTION endpoint.
type VisionClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ scan.Recognizer = (*VisionClient)(nil)

// VisionOption configures a VisionClient.
type VisionOption func(*VisionClient)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(u string) VisionOption {
	return func(c *VisionClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) VisionOption {
	return func(c *VisionClient) {
		c.httpClient = hc
	}
}

// NewVisionClient builds a client for the given API key.
func NewVisionClient(apiKey string, opts ...VisionOption) (*VisionClient, error) {
	if apiKey == "" {
		return nil, errors.New("vision api key is required")
	}
	c := &VisionClient{
		apiKey:     apiKey,
		baseURL:    defaultVisionBaseURL,
		httpClient: &http.Client{Timeout: defaultVisionTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// RecognizeText sends the photo for TEXT_DETECTION. The first annotation
// carries the full recognized text; no annotations means the image had no
// readable text, which is a valid empty result, not an error. Transport and
// API failures are returned as errors so callers can tell an outage from a
// blank card.
func (c *VisionClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	body := annotateRequest{Requests: []annotateEntry{{
		Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
	}}}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode annotate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call vision api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("vision api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode annotate response: %w", err)
	}
	if len(decoded.Responses) == 0 {
		return "", nil
	}
	first := decoded.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision api error %d: %s", first.Error.Code, first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		return "", nil
	}
	return first.TextAnnotations[0].Description, nil
}
