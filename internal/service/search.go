package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// FilterResult is a filter index hit with match metadata for
// highlighting
type FilterResult struct {
	Item           domain.RecommendationItem
	MatchedIndexes []int
	Score          int
}

// FilterIndex implements sahilm/fuzzy.Source over the visible feed for
// zero-allocation as-you-type narrowing
type FilterIndex struct {
	items       []domain.RecommendationItem
	lowerTitles []string
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *FilterIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *FilterIndex) Len() int { return len(idx.items) }

// SearchService handles catalog search with fuzzy ranking and a local
// fallback over titles already seen in the feed
type SearchService struct {
	repo   domain.RecommenderRepository
	logger *slog.Logger

	indexMu    sync.RWMutex
	titleIndex map[string]domain.MovieSummary

	filterMu      sync.RWMutex
	filterIndex   *FilterIndex
	filterIndexed map[int64]bool
}

// NewSearchService creates a new search service
func NewSearchService(repo domain.RecommenderRepository, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		repo:          repo,
		logger:        logger,
		titleIndex:    make(map[string]domain.MovieSummary),
		filterIndex:   &FilterIndex{},
		filterIndexed: make(map[int64]bool),
	}
}

// Search queries the backend catalog, ranking results with fuzzy
// matching against the query. When the backend is unreachable it falls
// back to fuzzy-matching locally indexed titles.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.MovieSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Warn("backend search failed, falling back to local", "error", err)
		return s.localSearch(query), nil
	}

	ranked := rankResults(results, query)
	s.logger.Debug("search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// IndexItems adds titles to the local fallback index
func (s *SearchService) IndexItems(items []domain.MovieSummary) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	for _, item := range items {
		s.titleIndex[strings.ToLower(item.Title)] = item
	}
	s.logger.Debug("indexed titles", "count", len(items), "total", len(s.titleIndex))
}

// localSearch performs fuzzy matching against the fallback index
func (s *SearchService) localSearch(query string) []domain.MovieSummary {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if len(s.titleIndex) == 0 {
		return nil
	}

	titles := make([]string, 0, len(s.titleIndex))
	for title := range s.titleIndex {
		titles = append(titles, title)
	}

	matches := fuzzy.RankFindFold(query, titles)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]domain.MovieSummary, 0, len(matches))
	for _, match := range matches {
		if item, ok := s.titleIndex[match.Target]; ok {
			results = append(results, item)
		}
	}
	return results
}

// rankResults orders backend results by match quality against the
// query: exact, then prefix, then substring, then edit distance
func rankResults(items []domain.MovieSummary, query string) []domain.MovieSummary {
	if len(items) == 0 {
		return items
	}

	query = strings.ToLower(query)

	type rankedItem struct {
		item  domain.MovieSummary
		score int
	}

	ranked := make([]rankedItem, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, rankedItem{
			item:  item,
			score: matchScore(strings.ToLower(item.Title), query),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]domain.MovieSummary, len(ranked))
	for i, r := range ranked {
		results[i] = r.item
	}
	return results
}

// matchScore calculates a match score for ranking. Lower is better.
func matchScore(title, query string) int {
	if title == query {
		return 0
	}
	if strings.HasPrefix(title, query) {
		return 10
	}
	if strings.Contains(title, query) {
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}

// IndexForFilter adds feed items to the filter index, deduplicating by
// movie ID. Lowercase titles are pre-computed at index time.
func (s *SearchService) IndexForFilter(items []domain.RecommendationItem) {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()

	added := 0
	for _, item := range items {
		if s.filterIndexed[item.ID] {
			continue
		}
		s.filterIndexed[item.ID] = true
		s.filterIndex.items = append(s.filterIndex.items, item)
		s.filterIndex.lowerTitles = append(s.filterIndex.lowerTitles, strings.ToLower(item.Title))
		added++
	}

	s.logger.Debug("indexed items for filter", "added", added, "total", len(s.filterIndex.items))
}

// FilterLocal matches the query against the filter index, returning
// hits with matched character positions for highlighting
func (s *SearchService) FilterLocal(query string) []FilterResult {
	s.filterMu.RLock()
	defer s.filterMu.RUnlock()

	if query == "" || s.filterIndex.Len() == 0 {
		return nil
	}

	matches := sahilm.FindFrom(strings.ToLower(query), s.filterIndex)

	results := make([]FilterResult, len(matches))
	for i, match := range matches {
		results[i] = FilterResult{
			Item:           s.filterIndex.items[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}

// ClearIndexes drops both indexes, used on sign-out
func (s *SearchService) ClearIndexes() {
	s.indexMu.Lock()
	s.titleIndex = make(map[string]domain.MovieSummary)
	s.indexMu.Unlock()

	s.filterMu.Lock()
	s.filterIndex = &FilterIndex{}
	s.filterIndexed = make(map[int64]bool)
	s.filterMu.Unlock()
}

// FilterIndexCount returns the number of items in the filter index
func (s *SearchService) FilterIndexCount() int {
	s.filterMu.RLock()
	defer s.filterMu.RUnlock()
	return s.filterIndex.Len()
}
