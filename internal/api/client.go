package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "IMRS/2.0"
)

// Client implements domain.RecommenderRepository against the
// recommendation backend's JSON API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new backend API client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an HTTP request and returns the response body.
// Transport failures map to ErrBackendUnreachable so callers can degrade
// a single stream instead of failing a whole bundle.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "error", err)
		return nil, domain.ErrBackendUnreachable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error("backend request error", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return respBody, nil
}

// Ping reports backend liveness
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/", nil, nil)
	return err
}

// GetPopular returns the trending list
func (c *Client) GetPopular(ctx context.Context) ([]domain.MovieSummary, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/popular", nil, nil)
	if err != nil {
		return nil, err
	}

	var dtos []movieDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapSummaries(dtos), nil
}

// Search performs a title search
func (c *Client) Search(ctx context.Context, query string) ([]domain.MovieSummary, error) {
	params := url.Values{}
	params.Set("query", query)

	body, err := c.doRequest(ctx, http.MethodGet, "/search", params, nil)
	if err != nil {
		return nil, err
	}

	var dtos []movieDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapSummaries(dtos), nil
}

// GetOnboardingMovies returns rating candidates for onboarding,
// optionally narrowed to the given genres
func (c *Client) GetOnboardingMovies(ctx context.Context, userID string, genres []string) ([]domain.MovieSummary, error) {
	var params url.Values
	if len(genres) > 0 {
		params = url.Values{}
		params.Set("genres", strings.Join(genres, ","))
	}

	path := fmt.Sprintf("/onboarding_movies/%s", url.PathEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	var dtos []movieDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapSummaries(dtos), nil
}

// GetRecommendations returns the personalized stream
func (c *Client) GetRecommendations(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
	path := fmt.Sprintf("/recommendations/%s", url.PathEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var dtos []movieDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapRecommendations(dtos, domain.StreamPersonalized), nil
}

// GetHiddenGems returns the low-popularity high-affinity stream
func (c *Client) GetHiddenGems(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
	path := fmt.Sprintf("/recommendations/hidden_gems/%s", url.PathEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var dtos []movieDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapRecommendations(dtos, domain.StreamHiddenGem), nil
}

// GetTimeAware returns the context-aware stream with its label
func (c *Client) GetTimeAware(ctx context.Context) (*domain.TimeAwareFeed, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/recommendations/time_aware", nil, nil)
	if err != nil {
		return nil, err
	}

	var dto timeAwareDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &domain.TimeAwareFeed{
		ContextLabel: dto.Context,
		Items:        mapRecommendations(dto.Movies, domain.StreamTimeAware),
	}, nil
}

// GetUserStats returns the user's onboarding/progress record
func (c *Client) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	path := fmt.Sprintf("/user_stats/%s", url.PathEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var dto userStatsDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &domain.UserStats{
		RatedCount: dto.RatedCount,
		Persona:    dto.Persona,
	}, nil
}

// GetTasteProfile returns the user's top genres with scores
func (c *Client) GetTasteProfile(ctx context.Context, userID string) (*domain.TasteProfile, error) {
	path := fmt.Sprintf("/user_taste_profile/%s", url.PathEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var dto tasteProfileDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	profile := &domain.TasteProfile{
		TopGenres: make([]domain.GenreScore, len(dto.TopGenres)),
	}
	for i, g := range dto.TopGenres {
		profile.TopGenres[i] = domain.GenreScore{Genre: g.Genre, Score: g.Score}
	}
	return profile, nil
}

// GetMovie returns detail for a single movie, including similar titles
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*domain.MovieDetail, error) {
	path := fmt.Sprintf("/movie/%d", movieID)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var dto movieDetailDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &domain.MovieDetail{
		MovieSummary: mapSummary(dto.movieDTO),
		Similar:      mapSummaries(dto.Similar),
	}, nil
}

// GetReviews returns the reviews for a movie
func (c *Client) GetReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	path := fmt.Sprintf("/reviews/%d", movieID)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var dtos []reviewDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapReviews(dtos), nil
}

// RateMovie records a rating. The backend upserts, so re-rating a movie
// overwrites the previous value.
func (c *Client) RateMovie(ctx context.Context, userID string, movieID int64, rating int) error {
	if rating < 1 || rating > 5 {
		return domain.ErrInvalidRating
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/rate", nil, ratePayload{
		UserID:  userID,
		MovieID: movieID,
		Rating:  rating,
	})
	return err
}

// SetWatchStatus records a watched / plan-to-watch mark
func (c *Client) SetWatchStatus(ctx context.Context, userID string, movieID int64, status domain.WatchStatus) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/watchlist", nil, watchlistPayload{
		UserID:  userID,
		MovieID: movieID,
		Status:  string(status),
	})
	return err
}

// SubmitReview posts a review
func (c *Client) SubmitReview(ctx context.Context, review domain.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return domain.ErrInvalidRating
	}
	if strings.TrimSpace(review.Text) == "" {
		return domain.ErrEmptyReview
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/review", nil, reviewDTO{
		UserID:     review.UserID,
		MovieID:    review.MovieID,
		Rating:     review.Rating,
		ReviewText: review.Text,
	})
	return err
}

// SaveGenrePreferences records the genre picks from onboarding
func (c *Client) SaveGenrePreferences(ctx context.Context, userID string, genres []string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/profile", nil, profilePayload{
		UserID: userID,
		Genres: genres,
	})
	return err
}

// WipeUserData deletes all ratings, watch state and preferences for a user
func (c *Client) WipeUserData(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/user_data/%s", url.PathEscape(userID))
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	return err
}
