package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/tui/styles"
)

// View renders the current application state
func (m Model) View() string {
	var body string
	switch m.State {
	case StateLoading:
		body = m.viewLoading()
	case StateSignIn:
		body = m.viewSignIn()
	case StateGenreOnboarding:
		body = m.viewGenreOnboarding()
	case StateRatingOnboarding:
		body = m.viewRatingOnboarding()
	case StateHome:
		body = m.viewHome()
	case StateSearch:
		body = m.viewSearch()
	case StateLibrary:
		body = m.viewLibrary()
	case StateMovieDetail:
		body = m.viewDetail()
	case StateProfile:
		body = m.viewProfile()
	case StateReviewInput:
		body = m.viewReviewInput()
	case StatePhaseError:
		body = m.viewPhaseError()
	case StateConfirmWipe:
		body = m.viewConfirm("Delete all your ratings, watchlist and reviews?", "This cannot be undone.")
	case StateConfirmLogout:
		body = m.viewConfirm("Sign out?", "Your data stays on the server.")
	}
	return body + "\n" + m.viewStatusBar()
}

func (m Model) viewLoading() string {
	return "\n  " + m.spinner.View() + " " + styles.DimStyle.Render("loading...")
}

func (m Model) viewSignIn() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render("IMRS") + "\n")
	b.WriteString("  " + styles.SubtitleStyle.Render("movie recommendations for your terminal") + "\n\n")

	mode := "Sign in"
	if m.signUpMode {
		mode = "Create account"
	}
	b.WriteString("  " + styles.AccentStyle.Render(mode) + "\n\n")
	b.WriteString("  " + m.emailInput.View() + "\n")
	b.WriteString("  " + m.passwordInput.View() + "\n\n")

	if m.authBusy {
		b.WriteString("  " + styles.DimStyle.Render("signing in...") + "\n")
	}
	if m.authErr != "" {
		b.WriteString("  " + styles.ErrorStyle.Render(m.authErr) + "\n")
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("tab switch field • enter submit • ctrl+s toggle sign up • ctrl+c quit"))
	return b.String()
}

func (m Model) viewGenreOnboarding() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render("What do you like to watch?") + "\n")
	b.WriteString("  " + styles.SubtitleStyle.Render("pick a few genres to seed your recommendations") + "\n\n")

	for i, genre := range genreOptions {
		check := "[ ]"
		if m.genreSelected[genre] {
			check = "[" + styles.SuccessStyle.Render("x") + "]"
		}
		line := fmt.Sprintf("%s %s", check, genre)
		if i == m.genreCursor {
			b.WriteString("  " + styles.SelectedItemStyle.Render(line) + "\n")
		} else {
			b.WriteString("  " + styles.NormalItemStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("j/k move • space toggle • enter continue"))
	return b.String()
}

func (m Model) viewRatingOnboarding() string {
	var b strings.Builder

	rated := m.Actions.RatedCount()
	threshold := m.Gate.Threshold()

	b.WriteString("\n  " + styles.TitleStyle.Render("Rate a few movies") + "\n")
	progress := fmt.Sprintf("%d of %d rated", rated, threshold)
	b.WriteString("  " + styles.SubtitleStyle.Render(progress) + "\n\n")

	if len(m.onboardingMovies) == 0 {
		b.WriteString("  " + styles.DimStyle.Render("finding movies you might know...") + "\n")
	}

	for i, movie := range m.onboardingMovies {
		line := movie.Title
		if genres := movie.GenreLine(); genres != "" {
			line += "  " + styles.DimStyle.Render(genres)
		}
		if i == m.onboardingCursor {
			b.WriteString("  " + styles.SelectedItemStyle.Render(line) + "\n")
		} else {
			b.WriteString("  " + styles.NormalItemStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("j/k move • 1-5 rate • s shuffle"))
	return b.String()
}

func (m Model) viewHome() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render("IMRS"))
	if m.session != nil {
		b.WriteString("  " + styles.DimStyle.Render(m.session.DisplayName()))
	}
	b.WriteString("\n")

	if !m.feedLoaded {
		b.WriteString("\n  " + m.spinner.View() + " " + styles.DimStyle.Render("loading your feed...") + "\n")
		return b.String()
	}

	if m.feed.Degraded() {
		b.WriteString("  " + styles.ErrorStyle.Render("some sections could not be loaded") + "\n")
	}
	if m.feed.Bundle.Reason != "" {
		b.WriteString("  " + styles.ReasonStyle.Render(m.feed.Bundle.Reason) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderRail(railTrending, domain.StreamTrending.String(), m.feed.Bundle.Trending))
	b.WriteString(m.renderRail(railPersonalized, domain.StreamPersonalized.String(), itemTitles(m.feed.Bundle.Personalized)))
	b.WriteString(m.renderRail(railHiddenGems, domain.StreamHiddenGem.String(), itemTitles(m.feed.Bundle.HiddenGems)))

	timeLabel := domain.StreamTimeAware.String()
	var timeItems []domain.MovieSummary
	if m.feed.Bundle.TimeAware != nil {
		if m.feed.Bundle.TimeAware.ContextLabel != "" {
			timeLabel = m.feed.Bundle.TimeAware.ContextLabel
		}
		timeItems = itemTitles(m.feed.Bundle.TimeAware.Items)
	}
	b.WriteString(m.renderRail(railTimeAware, timeLabel, timeItems))

	b.WriteString("\n  " + styles.HelpStyle.Render("j/k rail • h/l move • enter open • 1-5 rate • w watched • p plan • / search • b library • u profile • r refresh"))
	return b.String()
}

// renderRail draws one horizontal row of the feed with its cursor
func (m Model) renderRail(rail feedRail, label string, items []domain.MovieSummary) string {
	var b strings.Builder

	title := styles.RailTitleStyle.Render(label)
	if rail == m.activeRail {
		title = styles.AccentStyle.Render("» ") + title
	} else {
		title = "  " + title
	}
	b.WriteString("  " + title + "\n")

	if len(items) == 0 {
		b.WriteString("    " + styles.DimStyle.Render("nothing here right now") + "\n\n")
		return b.String()
	}

	cursor := m.railCursor[rail]
	var cells []string
	for i, movie := range items {
		label := m.decorateTitle(movie)
		if rail == m.activeRail && i == cursor {
			cells = append(cells, styles.SelectedItemStyle.Render(label))
		} else {
			cells = append(cells, styles.NormalItemStyle.Render(label))
		}
	}
	b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n\n")
	return b.String()
}

// decorateTitle appends the user's rating and watch markers to a title
func (m Model) decorateTitle(movie domain.MovieSummary) string {
	label := movie.Title
	if rating, ok := m.Actions.Rating(movie.ID); ok {
		label += " " + styles.StarStyle.Render(strings.Repeat(styles.StarFilled, rating))
	}
	if m.Actions.Watched(movie.ID) {
		label += " " + styles.WatchedStyle.Render(styles.WatchedChar)
	}
	if m.Actions.OnWatchlist(movie.ID) {
		label += " " + styles.PlanStyle.Render(styles.PlanChar)
	}
	return label
}

func itemTitles(items []domain.RecommendationItem) []domain.MovieSummary {
	out := make([]domain.MovieSummary, len(items))
	for i, item := range items {
		out[i] = item.MovieSummary
	}
	return out
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render("Search") + "\n\n")
	b.WriteString("  " + m.searchInput.View() + "\n\n")

	if m.searchQuery == "" {
		b.WriteString("  " + styles.DimStyle.Render("type to search the catalog") + "\n")
	} else if len(m.searchResults) == 0 {
		b.WriteString("  " + styles.DimStyle.Render("no matches for \""+m.searchQuery+"\"") + "\n")
	}

	for i, movie := range m.searchResults {
		line := m.decorateTitle(movie)
		if genres := movie.GenreLine(); genres != "" {
			line += "  " + styles.DimStyle.Render(genres)
		}
		if i == m.searchCursor {
			b.WriteString("  " + styles.SelectedItemStyle.Render(line) + "\n")
		} else {
			b.WriteString("  " + styles.NormalItemStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("↑/↓ move • enter open • esc back"))
	return b.String()
}

var libraryTabNames = [...]string{"Watchlist", "Watched", "Rated"}

func (m Model) viewLibrary() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render("Library") + "\n\n")

	var tabs []string
	for i, name := range libraryTabNames {
		label := fmt.Sprintf("%s (%d)", name, len(m.libraryTabs[i]))
		if i == m.libraryTab {
			tabs = append(tabs, styles.AccentStyle.Render(label))
		} else {
			tabs = append(tabs, styles.DimStyle.Render(label))
		}
	}
	b.WriteString("  " + strings.Join(tabs, "  ") + "\n\n")

	entries := m.libraryTabs[m.libraryTab]
	if len(entries) == 0 {
		b.WriteString("  " + styles.DimStyle.Render("nothing here yet") + "\n")
	}

	for i, entry := range entries {
		title := entry.Movie.Title
		if title == "" {
			title = fmt.Sprintf("Movie #%d", entry.Movie.ID)
		}
		line := title
		if entry.Rating > 0 {
			line += " " + styles.StarStyle.Render(strings.Repeat(styles.StarFilled, entry.Rating))
		}
		if genres := entry.Movie.GenreLine(); genres != "" {
			line += "  " + styles.DimStyle.Render(genres)
		}
		if i == m.libraryCursor {
			b.WriteString("  " + styles.SelectedItemStyle.Render(line) + "\n")
		} else {
			b.WriteString("  " + styles.NormalItemStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("tab switch • j/k move • enter open • x remove • esc back"))
	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder

	if m.detail == nil {
		return "\n  " + styles.DimStyle.Render("loading movie...")
	}

	b.WriteString("\n  " + styles.TitleStyle.Render(m.detail.Title) + "\n")
	if genres := m.detail.GenreLine(); genres != "" {
		b.WriteString("  " + styles.SubtitleStyle.Render(genres) + "\n")
	}

	if url, ok := m.posterURLs[m.detail.Title]; ok {
		b.WriteString("  " + styles.DimStyle.Render("poster: "+url) + "\n")
	}
	b.WriteString("\n")

	if rating, ok := m.Actions.Rating(m.detail.ID); ok {
		stars := styles.StarStyle.Render(strings.Repeat(styles.StarFilled, rating)) +
			styles.StarEmptyStyle.Render(strings.Repeat(styles.StarEmpty, 5-rating))
		b.WriteString("  your rating: " + stars + "\n")
	}
	if m.Actions.Watched(m.detail.ID) {
		b.WriteString("  " + styles.WatchedStyle.Render(styles.WatchedChar+" watched") + "\n")
	}
	if m.Actions.OnWatchlist(m.detail.ID) {
		b.WriteString("  " + styles.PlanStyle.Render(styles.PlanChar+" plan to watch") + "\n")
	}

	if len(m.detail.Similar) > 0 {
		b.WriteString("\n  " + styles.RailTitleStyle.Render("Similar") + "\n")
		for _, movie := range m.detail.Similar {
			b.WriteString("    " + styles.NormalItemStyle.Render(movie.Title) + "\n")
		}
	}

	if len(m.reviews) > 0 {
		b.WriteString("\n  " + styles.RailTitleStyle.Render("Reviews") + "\n")
		for _, review := range m.reviews {
			b.WriteString("    " + styles.StarStyle.Render(review.Stars()) + " " + review.Text + "\n")
		}
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("1-5 rate • w watched • p plan • v review • esc back"))
	return b.String()
}

func (m Model) viewProfile() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render("Profile") + "\n")
	if m.session != nil {
		b.WriteString("  " + styles.SubtitleStyle.Render(m.session.Email) + "\n")
	}
	b.WriteString("\n")

	if m.stats == nil {
		b.WriteString("  " + styles.DimStyle.Render("loading...") + "\n")
	} else {
		b.WriteString(fmt.Sprintf("  movies rated: %s\n", styles.AccentStyle.Render(fmt.Sprintf("%d", m.stats.RatedCount))))
		if m.stats.Persona != "" {
			b.WriteString("  taste persona: " + styles.HighlightStyle.Render(m.stats.Persona) + "\n")
		}
	}

	if m.taste != nil && len(m.taste.TopGenres) > 0 {
		b.WriteString("\n  " + styles.RailTitleStyle.Render("Top genres") + "\n")
		for _, gs := range m.taste.TopGenres {
			bar := strings.Repeat("▇", int(gs.Score/10))
			b.WriteString(fmt.Sprintf("    %-14s %s\n", gs.Genre, styles.AccentStyle.Render(bar)))
		}
	}

	b.WriteString("\n  " + styles.HelpStyle.Render("esc back • ctrl+l sign out • ctrl+d delete my data"))
	return b.String()
}

func (m Model) viewReviewInput() string {
	var b strings.Builder

	title := "Review"
	if m.detail != nil {
		title = "Review: " + m.detail.Title
	}
	b.WriteString("\n  " + styles.TitleStyle.Render(title) + "\n\n")

	stars := styles.StarStyle.Render(strings.Repeat(styles.StarFilled, m.reviewRating)) +
		styles.StarEmptyStyle.Render(strings.Repeat(styles.StarEmpty, 5-m.reviewRating))
	b.WriteString("  " + stars + "\n\n")
	b.WriteString("  " + m.reviewInput.View() + "\n")

	b.WriteString("\n  " + styles.HelpStyle.Render("ctrl+1..5 set stars • enter submit • esc cancel"))
	return b.String()
}

func (m Model) viewPhaseError() string {
	var b strings.Builder

	b.WriteString("\n  " + styles.ErrorStyle.Render("Could not load your profile") + "\n\n")
	b.WriteString("  " + styles.DimStyle.Render(m.phaseErr) + "\n")
	b.WriteString("\n  " + styles.HelpStyle.Render("r retry • ctrl+l sign out • ctrl+c quit"))
	return b.String()
}

func (m Model) viewConfirm(question, detail string) string {
	var b strings.Builder

	b.WriteString("\n  " + styles.TitleStyle.Render(question) + "\n")
	b.WriteString("  " + styles.DimStyle.Render(detail) + "\n")
	b.WriteString("\n  " + styles.HelpStyle.Render("y confirm • n cancel"))
	return b.String()
}

func (m Model) viewStatusBar() string {
	dot := styles.OnlineDot
	if !m.online {
		dot = styles.OfflineDot + " " + styles.DimStyle.Render("offline")
	}

	left := dot
	if m.errText != "" {
		left += "  " + styles.ErrorStyle.Render(m.errText)
	}
	return styles.StatusBarStyle.Render(left)
}
