package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

const posterTimeout = 15 * time.Second

var yearSuffix = regexp.MustCompile(`\(\d{4}\)\s*$`)

// NormalizeTitle strips a trailing release-year marker from a movie
// title so lookups for "Heat (1995)" and "Heat" resolve identically.
// A year anywhere else in the title is part of the name and stays.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(yearSuffix.ReplaceAllString(strings.TrimSpace(title), ""))
}

// Client implements domain.PosterRepository against a TMDB-style
// artwork search API.
type Client struct {
	baseURL    string
	apiKey     string
	imageURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.PosterRepository = (*Client)(nil)

// NewClient creates a new poster lookup client
func NewClient(baseURL, apiKey, imageURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		imageURL: strings.TrimRight(imageURL, "/"),
		httpClient: &http.Client{
			Timeout: posterTimeout,
		},
		logger: logger,
	}
}

type searchResponse struct {
	Results []struct {
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// FindPosterURL searches for a poster by title. A miss is not an error:
// the empty string is returned when the catalog has no artwork.
func (c *Client) FindPosterURL(ctx context.Context, title string) (string, error) {
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("query", NormalizeTitle(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/movie?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("poster search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poster search failed with status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse poster response: %w", err)
	}

	for _, r := range result.Results {
		if r.PosterPath != "" {
			return c.imageURL + r.PosterPath, nil
		}
	}

	c.logger.Debug("no poster found", "title", title)
	return "", nil
}
