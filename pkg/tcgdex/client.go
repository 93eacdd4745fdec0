// Package tcgdex is a small client for the public TCGdex REST API, the
// upstream source of the card catalog and reference art.
package tcgdex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL serves the English catalog.
const DefaultBaseURL = "https://api.tcgdex.net/v2/en"

const defaultTimeout = 30 * time.Second

// Client talks to one TCGdex language endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a Client for the English catalog unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CardCount mirrors the set card counters.
type CardCount struct {
	Total    int `json:"total"`
	Official int `json:"official"`
}

// SetSummary is one entry of the set list.
type SetSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo"`
	CardCount CardCount `json:"cardCount"`
}

// Serie is the series a set belongs to.
type Serie struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CardBrief is the abbreviated card record inside a set detail.
type CardBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// SetDetail is a full set record including its cards.
type SetDetail struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Logo      string      `json:"logo"`
	Serie     Serie       `json:"serie"`
	CardCount CardCount   `json:"cardCount"`
	Cards     []CardBrief `json:"cards"`
}

// Card is the full card record.
type Card struct {
	ID       string   `json:"id"`
	LocalID  string   `json:"localId"`
	Name     string   `json:"name"`
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Rarity   string   `json:"rarity"`
	HP       *int     `json:"hp"`
	Types    []string `json:"types"`
}

// ListSets returns every set summary.
func (c *Client) ListSets(ctx context.Context) ([]SetSummary, error) {
	var sets []SetSummary
	if err := c.getJSON(ctx, "/sets", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// GetSet returns one set with its card briefs.
func (c *Client) GetSet(ctx context.Context, id string) (*SetDetail, error) {
	var set SetDetail
	if err := c.getJSON(ctx, "/sets/"+url.PathEscape(id), &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetCard returns the full card record.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.getJSON(ctx, "/cards/"+url.PathEscape(id), &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// FetchImage streams an asset download. The caller closes the reader.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("image status %d for %s", resp.StatusCode, imageURL)
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call tcgdex %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tcgdex %s status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tcgdex %s: %w", path, err)
	}
	return nil
}

// ImageURL turns a bare card asset stem into a downloadable URL. TCGdex
// serves card images under quality/extension suffixes.
func ImageURL(stem string) string {
	if stem == "" {
		return ""
	}
	return stem + "/low.png"
}

// LogoURL turns a bare set logo stem into a downloadable URL.
func LogoURL(stem string) string {
	if stem == "" {
		return ""
	}
	return stem + ".png"
}
