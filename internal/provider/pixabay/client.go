package pixabay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"atlas/internal/metrics"
	"atlas/internal/model"

	"go.uber.org/zap"
)

const providerName = "pixabay"

// Categories restricts results to travel-friendly photos
var Categories = []string{
	"fashion", "nature", "people", "places", "animals", "transportation", "travel", "buildings",
}

// ErrMissingAPIKey is returned when the client has no key configured
var ErrMissingAPIKey = errors.New("pixabay api key not configured")

// Client fetches photo pages from the Pixabay search API
type Client struct {
	baseURL    string
	apiKey     string
	perPage    int
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, perPage int, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Pixabay accepts 3..200 results per page
	if perPage < 3 {
		perPage = 3
	} else if perPage > 200 {
		perPage = 200
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		perPage:    perPage,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type hit struct {
	ID            int64  `json:"id"`
	PageURL       string `json:"pageURL"`
	Tags          string `json:"tags"`
	PreviewURL    string `json:"previewURL"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
	User          string `json:"user"`
}

type searchResponse struct {
	Total     int   `json:"total"`
	TotalHits int   `json:"totalHits"`
	Hits      []hit `json:"hits"`
}

// BuildQuery normalises an entity name into search terms. Encoded, the words
// are joined by "+".
func BuildQuery(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ImagePage returns one 1-indexed page of horizontal photos for query. Asking
// past the last page yields an empty page, not an error.
func (c *Client) ImagePage(ctx context.Context, query string, page int) ([]model.Image, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if page < 1 {
		page = 1
	}

	start := time.Now()
	images, err := c.search(ctx, query, page)
	metrics.ProviderDurationMs.WithLabelValues(providerName).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, err
	}
	metrics.ProviderRequestsTotal.WithLabelValues(providerName, "ok").Inc()

	c.logger.Debug("image page fetched",
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("hits", len(images)),
	)
	return images, nil
}

func (c *Client) search(ctx context.Context, query string, page int) ([]model.Image, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", BuildQuery(query))
	params.Set("image_type", "photo")
	params.Set("category", strings.Join(Categories, ","))
	params.Set("orientation", "horizontal")
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		// Paging beyond the available hits is reported as a 400
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(msg, "out of valid range") {
			return []model.Image{}, nil
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, msg)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	images := make([]model.Image, 0, len(sr.Hits))
	for _, h := range sr.Hits {
		images = append(images, model.Image{
			ID:            h.ID,
			PageURL:       h.PageURL,
			Tags:          h.Tags,
			PreviewURL:    h.PreviewURL,
			WebformatURL:  h.WebformatURL,
			LargeImageURL: h.LargeImageURL,
			Width:         h.ImageWidth,
			Height:        h.ImageHeight,
			User:          h.User,
		})
	}
	return images, nil
}
