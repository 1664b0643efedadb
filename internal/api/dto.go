package api

import (
	"strings"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// Wire DTOs for the recommendation backend. Genres arrive as a single
// pipe-separated string ("Action|Crime|Drama") and are split on mapping.

type movieDTO struct {
	MovieID int64   `json:"movieId"`
	Title   string  `json:"title"`
	Genres  string  `json:"genres"`
	Score   float64 `json:"score,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

type timeAwareDTO struct {
	Context string     `json:"context"`
	Movies  []movieDTO `json:"movies"`
}

type userStatsDTO struct {
	RatedCount int    `json:"rated_count"`
	Persona    string `json:"persona,omitempty"`
}

type genreScoreDTO struct {
	Genre string  `json:"genre"`
	Score float64 `json:"score"`
}

type tasteProfileDTO struct {
	TopGenres []genreScoreDTO `json:"top_genres"`
}

type movieDetailDTO struct {
	movieDTO
	Similar []movieDTO `json:"similar"`
}

type reviewDTO struct {
	UserID     string `json:"user_id"`
	MovieID    int64  `json:"movie_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type ratePayload struct {
	UserID  string `json:"user_id"`
	MovieID int64  `json:"movie_id"`
	Rating  int    `json:"rating"`
}

type watchlistPayload struct {
	UserID  string `json:"user_id"`
	MovieID int64  `json:"movie_id"`
	Status  string `json:"status"`
}

type profilePayload struct {
	UserID string   `json:"user_id"`
	Genres []string `json:"genres"`
}

// splitGenres splits the backend's pipe-separated genre string
func splitGenres(s string) []string {
	if s == "" || s == "(no genres listed)" {
		return nil
	}
	parts := strings.Split(s, "|")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

// mapSummary converts a movie DTO to a domain summary
func mapSummary(dto movieDTO) domain.MovieSummary {
	return domain.MovieSummary{
		ID:     dto.MovieID,
		Title:  dto.Title,
		Genres: splitGenres(dto.Genres),
	}
}

// mapSummaries converts a listing response
func mapSummaries(dtos []movieDTO) []domain.MovieSummary {
	out := make([]domain.MovieSummary, len(dtos))
	for i, dto := range dtos {
		out[i] = mapSummary(dto)
	}
	return out
}

// mapRecommendations converts a scored stream response, tagging each item
// with the stream it came from
func mapRecommendations(dtos []movieDTO, stream domain.SourceStream) []domain.RecommendationItem {
	out := make([]domain.RecommendationItem, len(dtos))
	for i, dto := range dtos {
		out[i] = domain.RecommendationItem{
			MovieSummary: mapSummary(dto),
			Score:        dto.Score,
			ReasonLabel:  dto.Reason,
			Stream:       stream,
		}
	}
	return out
}

// mapReviews converts a reviews response
func mapReviews(dtos []reviewDTO) []domain.Review {
	out := make([]domain.Review, len(dtos))
	for i, dto := range dtos {
		out[i] = domain.Review{
			UserID:  dto.UserID,
			MovieID: dto.MovieID,
			Rating:  dto.Rating,
			Text:    dto.ReviewText,
		}
	}
	return out
}
