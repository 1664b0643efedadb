package domain

import (
	"fmt"
	"strings"
)

// SourceStream identifies which feed a recommendation came from
type SourceStream int

const (
	StreamTrending SourceStream = iota
	StreamPersonalized
	StreamHiddenGem
	StreamTimeAware
	StreamSearch
)

// String returns a human-readable label for the stream
func (s SourceStream) String() string {
	switch s {
	case StreamTrending:
		return "Trending"
	case StreamPersonalized:
		return "For You"
	case StreamHiddenGem:
		return "Hidden Gems"
	case StreamTimeAware:
		return "Right Now"
	case StreamSearch:
		return "Search"
	default:
		return "Unknown"
	}
}

// MovieSummary is the minimal unit returned by any listing endpoint.
// Immutable once fetched.
type MovieSummary struct {
	ID     int64    // Backend movie identifier
	Title  string   // Display title, may carry a "(YYYY)" suffix
	Genres []string // Ordered genre list
}

// PrimaryGenre returns the first genre, or empty if none
func (m MovieSummary) PrimaryGenre() string {
	if len(m.Genres) == 0 {
		return ""
	}
	return m.Genres[0]
}

// GenreLine returns the genres joined for display
func (m MovieSummary) GenreLine() string {
	return strings.Join(m.Genres, ", ")
}

// RecommendationItem is a MovieSummary scored by one of the
// recommendation streams
type RecommendationItem struct {
	MovieSummary
	Score       float64      // Backend-computed score
	ReasonLabel string       // Short attribution, e.g. "Because you liked Heat (1995)"
	Stream      SourceStream // Stream that produced this item
}

// TimeAwareFeed is the context-aware stream with its label
// (e.g. "Friday Night Thrillers")
type TimeAwareFeed struct {
	ContextLabel string
	Items        []RecommendationItem
}

// FeedBundle is the merged result of all feed streams for one load cycle
type FeedBundle struct {
	Trending     []MovieSummary
	Personalized []RecommendationItem
	HiddenGems   []RecommendationItem
	TimeAware    *TimeAwareFeed // nil when the stream yielded nothing
	Reason       string         // Derived from the first personalized item
}

// IsEmpty reports whether every stream came back empty
func (b FeedBundle) IsEmpty() bool {
	return len(b.Trending) == 0 && len(b.Personalized) == 0 &&
		len(b.HiddenGems) == 0 && (b.TimeAware == nil || len(b.TimeAware.Items) == 0)
}

// Session is an authenticated identity handle for the current user.
// Exactly one active Session exists per client runtime.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
}

// DisplayName returns the part of the email before the @ for display
func (s Session) DisplayName() string {
	if i := strings.IndexByte(s.Email, '@'); i > 0 {
		return s.Email[:i]
	}
	return s.Email
}

// WatchStatus is the backend's watch-state discriminator
type WatchStatus string

const (
	StatusWatched     WatchStatus = "watched"
	StatusPlanToWatch WatchStatus = "plan_to_watch"
)

// UserStats is the persisted onboarding/progress record for a user
type UserStats struct {
	RatedCount int    // Ratings submitted so far, monotonically non-decreasing
	Persona    string // Backend-assigned taste persona, may be empty
}

// GenreScore is one bar of the taste profile
type GenreScore struct {
	Genre string
	Score float64 // 0..100
}

// TasteProfile summarizes a user's genre affinity
type TasteProfile struct {
	TopGenres []GenreScore
}

// MovieDetail is the full record for a single movie
type MovieDetail struct {
	MovieSummary
	Similar []MovieSummary
}

// Review is a user-submitted review for a movie
type Review struct {
	UserID  string
	MovieID int64
	Rating  int // 1..5
	Text    string
}

// Stars renders the rating as a fixed-width star string
func (r Review) Stars() string {
	return fmt.Sprintf("%s%s", strings.Repeat("★", r.Rating), strings.Repeat("☆", 5-r.Rating))
}
