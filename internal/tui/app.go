package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/service"
	"github.com/itsiBahar/IMRS-V2/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateLoading ApplicationState = iota
	StateSignIn
	StateGenreOnboarding
	StateRatingOnboarding
	StateHome
	StateSearch
	StateLibrary
	StateMovieDetail
	StateProfile
	StateReviewInput
	StatePhaseError
	StateConfirmWipe
	StateConfirmLogout
)

// healthInterval is how often the connectivity indicator refreshes
const healthInterval = 30 * time.Second

// genreOptions is the selectable set for the onboarding genre step
var genreOptions = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime",
	"Documentary", "Drama", "Fantasy", "Horror", "Mystery",
	"Romance", "Sci-Fi", "Thriller", "War", "Western",
}

// feedRail identifies one row of the home feed
type feedRail int

const (
	railTrending feedRail = iota
	railPersonalized
	railHiddenGems
	railTimeAware
)

// Library tab indexes, in display order
const (
	libraryTabWatchlist = iota
	libraryTabWatched
	libraryTabRated
)

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Keys  KeyMap

	// Services
	Sessions *service.SessionManager
	Gate     *service.ProgressGate
	Feeds    *service.FeedAggregator
	Actions  *service.ActionReconciler
	Search   *service.SearchService
	Posters  *service.PosterService
	Profiles *service.ProfileService
	Health   *service.HealthMonitor

	// Session
	session *domain.Session

	// Sign-in form
	emailInput    textinput.Model
	passwordInput textinput.Model
	focusPassword bool
	signUpMode    bool
	authErr       string
	authBusy      bool

	// Genre onboarding
	genreCursor   int
	genreSelected map[string]bool

	// Rating onboarding
	onboardingMovies []domain.MovieSummary
	onboardingCursor int

	// Home feed
	feed       service.HomeFeed
	feedLoaded bool
	activeRail feedRail
	railCursor map[feedRail]int

	// Search
	searchInput   textinput.Model
	searchResults []domain.MovieSummary
	searchCursor  int
	searchQuery   string

	// Library
	libraryTabs   [3][]LibraryEntry
	libraryTab    int
	libraryCursor int

	// Movie detail
	detail      *domain.MovieDetail
	reviews     []domain.Review
	detailFrom  ApplicationState
	posterURLs  map[string]string

	// Review input
	reviewInput  textinput.Model
	reviewRating int

	// Profile
	stats *domain.UserStats
	taste *domain.TasteProfile

	// Chrome
	spinner  spinner.Model
	width    int
	height   int
	online   bool
	errText  string
	phaseErr string
}

// NewModel creates the application model
func NewModel(
	sessions *service.SessionManager,
	gate *service.ProgressGate,
	feeds *service.FeedAggregator,
	actions *service.ActionReconciler,
	search *service.SearchService,
	posters *service.PosterService,
	profiles *service.ProfileService,
	health *service.HealthMonitor,
) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	searchInput := textinput.New()
	searchInput.Placeholder = "search movies"
	searchInput.CharLimit = 200

	reviewInput := textinput.New()
	reviewInput.Placeholder = "write a short review"
	reviewInput.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: time.Second / 10}
	sp.Style = styles.AccentStyle

	return Model{
		State:         StateLoading,
		Keys:          DefaultKeyMap(),
		Sessions:      sessions,
		Gate:          gate,
		Feeds:         feeds,
		Actions:       actions,
		Search:        search,
		Posters:       posters,
		Profiles:      profiles,
		Health:        health,
		emailInput:    email,
		passwordInput: password,
		searchInput:   searchInput,
		reviewInput:   reviewInput,
		spinner:       sp,
		genreSelected: make(map[string]bool),
		railCursor:    make(map[feedRail]int),
		posterURLs:    make(map[string]string),
		online:        true,
	}
}

// Init starts session restoration and the connectivity loop
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		RestoreSessionCmd(m.Sessions),
		CheckHealthCmd(m.Health),
		m.spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionRestoredMsg:
		if msg.Session == nil {
			m.State = StateSignIn
			return m, nil
		}
		m.session = msg.Session
		return m, ResolvePhaseCmd(m.Gate, m.session)

	case SignedInMsg:
		m.session = msg.Session
		m.authBusy = false
		m.authErr = ""
		m.passwordInput.SetValue("")
		m.State = StateLoading
		return m, ResolvePhaseCmd(m.Gate, m.session)

	case AuthFailedMsg:
		m.authBusy = false
		if msg.Err == domain.ErrAuthFailed {
			m.authErr = "invalid email or password"
		} else {
			m.authErr = msg.Err.Error()
		}
		m.State = StateSignIn
		return m, nil

	case SignedOutMsg:
		return m.resetToSignIn(), nil

	case PhaseResolvedMsg:
		return m.enterPhase(msg.Phase)

	case PhaseResolveFailedMsg:
		m.phaseErr = msg.Err.Error()
		m.State = StatePhaseError
		return m, nil

	case GenresSavedMsg:
		m.Gate.GenresSubmitted(m.session.UserID)
		m.State = StateRatingOnboarding
		m.onboardingMovies = nil
		return m, LoadOnboardingMoviesCmd(m.Gate, m.session.UserID, msg.Genres)

	case OnboardingMoviesMsg:
		m.onboardingMovies = msg.Movies
		m.onboardingCursor = 0
		return m, nil

	case FeedLoadedMsg:
		// A superseded load may resolve late; only the newest counts
		if !m.Feeds.IsCurrent(msg.Feed) {
			return m, nil
		}
		m.feed = msg.Feed
		m.feedLoaded = true
		m.indexFeed(msg.Feed.Bundle)
		return m, nil

	case LibraryLoadedMsg:
		m.libraryTabs = [3][]LibraryEntry{msg.Watchlist, msg.Watched, msg.Rated}
		if m.libraryCursor >= len(m.libraryTabs[m.libraryTab]) {
			m.libraryCursor = 0
		}
		return m, nil

	case SearchResultsMsg:
		if msg.Query != m.searchQuery {
			// Stale result from an earlier query
			return m, nil
		}
		m.searchResults = msg.Results
		m.searchCursor = 0
		return m, nil

	case PosterResolvedMsg:
		if msg.URL != "" {
			m.posterURLs[msg.Title] = msg.URL
		}
		return m, nil

	case ActionPersistedMsg:
		if msg.Err != nil {
			m.errText = "sync failed; change kept locally"
		}
		return m, nil

	case StatsLoadedMsg:
		m.stats = msg.Stats
		m.taste = msg.Taste
		return m, nil

	case MovieDetailMsg:
		m.detail = msg.Detail
		m.reviews = msg.Reviews
		return m, ResolvePosterCmd(m.Posters, msg.Detail.Title)

	case ReviewSubmittedMsg:
		m.State = StateMovieDetail
		m.reviewInput.SetValue("")
		m.reviewRating = 0
		if m.detail != nil {
			return m, LoadMovieDetailCmd(m.Profiles, m.detail.ID)
		}
		return m, nil

	case DataWipedMsg:
		// Wiped users start over from onboarding with no local caches
		m.Gate.Reset()
		m.Actions.Clear()
		m.Feeds.Clear()
		m.Search.ClearIndexes()
		if err := m.Posters.Invalidate(); err != nil {
			m.errText = "local cache could not be fully cleared"
		}
		m.stats = nil
		m.taste = nil
		m.libraryTabs = [3][]LibraryEntry{}
		m.State = StateLoading
		return m, ResolvePhaseCmd(m.Gate, m.session)

	case HealthCheckedMsg:
		m.online = msg.Online
		return m, HealthTickCmd(healthInterval)

	case HealthTickMsg:
		return m, CheckHealthCmd(m.Health)

	case ErrMsg:
		m.errText = msg.Error()
		return m, nil
	}

	return m, nil
}

// enterPhase routes a gate decision to its view
func (m Model) enterPhase(phase service.Phase) (tea.Model, tea.Cmd) {
	m.phaseErr = ""
	switch phase {
	case service.PhaseOnboardingGenres:
		m.State = StateGenreOnboarding
		m.genreCursor = 0
		m.genreSelected = make(map[string]bool)
		return m, nil
	case service.PhaseOnboardingRatings:
		m.State = StateRatingOnboarding
		return m, LoadOnboardingMoviesCmd(m.Gate, m.session.UserID, nil)
	default:
		m.State = StateHome
		m.feedLoaded = false
		return m, LoadFeedCmd(m.Feeds, m.session.UserID)
	}
}

// indexFeed feeds visible titles into the search fallback and filter
// indexes
func (m *Model) indexFeed(bundle domain.FeedBundle) {
	var items []domain.RecommendationItem
	items = append(items, bundle.Personalized...)
	items = append(items, bundle.HiddenGems...)
	if bundle.TimeAware != nil {
		items = append(items, bundle.TimeAware.Items...)
	}

	titles := append([]domain.MovieSummary{}, bundle.Trending...)
	for _, item := range items {
		titles = append(titles, item.MovieSummary)
	}
	m.Search.IndexItems(titles)
	m.Search.IndexForFilter(items)
}

// resetToSignIn clears all session-scoped view state
func (m Model) resetToSignIn() Model {
	m.session = nil
	m.feed = service.HomeFeed{}
	m.feedLoaded = false
	m.railCursor = make(map[feedRail]int)
	m.activeRail = railTrending
	m.onboardingMovies = nil
	m.searchResults = nil
	m.searchQuery = ""
	m.searchInput.SetValue("")
	m.libraryTabs = [3][]LibraryEntry{}
	m.libraryTab = libraryTabWatchlist
	m.libraryCursor = 0
	m.detail = nil
	m.reviews = nil
	m.stats = nil
	m.taste = nil
	m.errText = ""
	m.emailInput.SetValue("")
	m.emailInput.Focus()
	m.passwordInput.SetValue("")
	m.passwordInput.Blur()
	m.focusPassword = false
	m.State = StateSignIn
	return m
}

// handleKey dispatches key events by state
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit, except while typing
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.State {
	case StateSignIn:
		return m.handleSignInKey(msg)
	case StateGenreOnboarding:
		return m.handleGenreKey(msg)
	case StateRatingOnboarding:
		return m.handleOnboardingKey(msg)
	case StateHome:
		return m.handleHomeKey(msg)
	case StateSearch:
		return m.handleSearchKey(msg)
	case StateLibrary:
		return m.handleLibraryKey(msg)
	case StateMovieDetail:
		return m.handleDetailKey(msg)
	case StateProfile:
		return m.handleProfileKey(msg)
	case StateReviewInput:
		return m.handleReviewKey(msg)
	case StatePhaseError:
		return m.handlePhaseErrorKey(msg)
	case StateConfirmWipe:
		return m.handleConfirmWipeKey(msg)
	case StateConfirmLogout:
		return m.handleConfirmLogoutKey(msg)
	}
	return m, nil
}

func (m Model) handleSignInKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyTab:
		m.focusPassword = !m.focusPassword
		if m.focusPassword {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		} else {
			m.passwordInput.Blur()
			m.emailInput.Focus()
		}
		return m, nil

	case msg.Type == tea.KeyCtrlS:
		m.signUpMode = !m.signUpMode
		return m, nil

	case msg.Type == tea.KeyEnter:
		email := strings.TrimSpace(m.emailInput.Value())
		password := m.passwordInput.Value()
		if email == "" || password == "" {
			m.authErr = "email and password are required"
			return m, nil
		}
		m.authBusy = true
		m.authErr = ""
		if m.signUpMode {
			return m, SignUpCmd(m.Sessions, email, password)
		}
		return m, SignInCmd(m.Sessions, email, password)
	}

	var cmd tea.Cmd
	if m.focusPassword {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	} else {
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleGenreKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Up):
		if m.genreCursor > 0 {
			m.genreCursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.genreCursor < len(genreOptions)-1 {
			m.genreCursor++
		}
	case key.Matches(msg, m.Keys.Select):
		genre := genreOptions[m.genreCursor]
		m.genreSelected[genre] = !m.genreSelected[genre]
	case key.Matches(msg, m.Keys.Enter):
		genres := m.selectedGenres()
		if len(genres) == 0 {
			m.errText = "pick at least one genre"
			return m, nil
		}
		m.errText = ""
		return m, SaveGenresCmd(m.Actions, genres)
	}
	return m, nil
}

func (m *Model) selectedGenres() []string {
	var genres []string
	for _, g := range genreOptions {
		if m.genreSelected[g] {
			genres = append(genres, g)
		}
	}
	return genres
}

func (m Model) handleOnboardingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Up):
		if m.onboardingCursor > 0 {
			m.onboardingCursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.onboardingCursor < len(m.onboardingMovies)-1 {
			m.onboardingCursor++
		}
	case key.Matches(msg, m.Keys.Shuffle):
		return m, LoadOnboardingMoviesCmd(m.Gate, m.session.UserID, m.selectedGenres())
	default:
		if rating, ok := ratingKey(msg); ok {
			return m.rateOnboardingMovie(rating)
		}
	}
	return m, nil
}

// rateOnboardingMovie rates the selected candidate and removes it from
// the list; reaching the threshold moves to home
func (m Model) rateOnboardingMovie(rating int) (tea.Model, tea.Cmd) {
	if m.onboardingCursor >= len(m.onboardingMovies) {
		return m, nil
	}
	movie := m.onboardingMovies[m.onboardingCursor]

	done, err := m.Actions.Rate(movie.ID, rating)
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}

	m.onboardingMovies = append(
		m.onboardingMovies[:m.onboardingCursor],
		m.onboardingMovies[m.onboardingCursor+1:]...,
	)
	if m.onboardingCursor >= len(m.onboardingMovies) && m.onboardingCursor > 0 {
		m.onboardingCursor--
	}

	cmds := []tea.Cmd{AwaitPersistCmd("rate", movie.ID, done)}

	if m.Gate.NoteProgress(m.session.UserID, m.Actions.RatedCount()) == service.PhaseHome {
		m.State = StateHome
		m.feedLoaded = false
		cmds = append(cmds, LoadFeedCmd(m.Feeds, m.session.UserID))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Search):
		m.State = StateSearch
		m.searchInput.Focus()
		return m, nil
	case key.Matches(msg, m.Keys.Profile):
		m.State = StateProfile
		return m, LoadProfileCmd(m.Profiles, m.session.UserID)
	case key.Matches(msg, m.Keys.Library):
		m.State = StateLibrary
		m.libraryCursor = 0
		return m, LoadLibraryCmd(m.Profiles, m.Actions)
	case key.Matches(msg, m.Keys.Logout):
		m.State = StateConfirmLogout
		return m, nil
	case key.Matches(msg, m.Keys.Refresh):
		m.feedLoaded = false
		return m, LoadFeedCmd(m.Feeds, m.session.UserID)
	case key.Matches(msg, m.Keys.Up):
		if m.activeRail > railTrending {
			m.activeRail--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.activeRail < railTimeAware {
			m.activeRail++
		}
	case key.Matches(msg, m.Keys.Left):
		if m.railCursor[m.activeRail] > 0 {
			m.railCursor[m.activeRail]--
		}
	case key.Matches(msg, m.Keys.Right):
		if m.railCursor[m.activeRail] < m.railLen(m.activeRail)-1 {
			m.railCursor[m.activeRail]++
		}
	case key.Matches(msg, m.Keys.Enter):
		if movie, ok := m.selectedHomeMovie(); ok {
			return m.openDetail(movie.ID, StateHome)
		}
	case key.Matches(msg, m.Keys.Watched):
		return m.markSelected(domain.StatusWatched)
	case key.Matches(msg, m.Keys.Plan):
		return m.markSelected(domain.StatusPlanToWatch)
	default:
		if rating, ok := ratingKey(msg); ok {
			if movie, sel := m.selectedHomeMovie(); sel {
				return m.rateMovie(movie.ID, rating)
			}
		}
	}
	return m, nil
}

func (m Model) rateMovie(movieID int64, rating int) (tea.Model, tea.Cmd) {
	done, err := m.Actions.Rate(movieID, rating)
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.Gate.NoteProgress(m.session.UserID, m.Actions.RatedCount())
	return m, AwaitPersistCmd("rate", movieID, done)
}

func (m Model) markSelected(status domain.WatchStatus) (tea.Model, tea.Cmd) {
	movie, ok := m.selectedHomeMovie()
	if !ok {
		return m, nil
	}
	done, err := m.Actions.MarkWatch(movie.ID, status)
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	return m, AwaitPersistCmd("watch", movie.ID, done)
}

// railLen returns the item count of a home rail
func (m Model) railLen(rail feedRail) int {
	switch rail {
	case railTrending:
		return len(m.feed.Bundle.Trending)
	case railPersonalized:
		return len(m.feed.Bundle.Personalized)
	case railHiddenGems:
		return len(m.feed.Bundle.HiddenGems)
	case railTimeAware:
		if m.feed.Bundle.TimeAware == nil {
			return 0
		}
		return len(m.feed.Bundle.TimeAware.Items)
	}
	return 0
}

// selectedHomeMovie returns the movie under the home cursor
func (m Model) selectedHomeMovie() (domain.MovieSummary, bool) {
	i := m.railCursor[m.activeRail]
	switch m.activeRail {
	case railTrending:
		if i < len(m.feed.Bundle.Trending) {
			return m.feed.Bundle.Trending[i], true
		}
	case railPersonalized:
		if i < len(m.feed.Bundle.Personalized) {
			return m.feed.Bundle.Personalized[i].MovieSummary, true
		}
	case railHiddenGems:
		if i < len(m.feed.Bundle.HiddenGems) {
			return m.feed.Bundle.HiddenGems[i].MovieSummary, true
		}
	case railTimeAware:
		if m.feed.Bundle.TimeAware != nil && i < len(m.feed.Bundle.TimeAware.Items) {
			return m.feed.Bundle.TimeAware.Items[i].MovieSummary, true
		}
	}
	return domain.MovieSummary{}, false
}

func (m Model) openDetail(movieID int64, from ApplicationState) (tea.Model, tea.Cmd) {
	m.State = StateMovieDetail
	m.detailFrom = from
	m.detail = nil
	m.reviews = nil
	return m, LoadMovieDetailCmd(m.Profiles, movieID)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Clearing search re-enters the feed with a fresh load
		m.State = StateHome
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.searchResults = nil
		m.searchQuery = ""
		m.feedLoaded = false
		return m, LoadFeedCmd(m.Feeds, m.session.UserID)

	case tea.KeyEnter:
		if len(m.searchResults) > 0 && m.searchCursor < len(m.searchResults) {
			return m.openDetail(m.searchResults[m.searchCursor].ID, StateSearch)
		}
		return m, nil

	case tea.KeyUp:
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	query := strings.TrimSpace(m.searchInput.Value())
	if query != m.searchQuery {
		m.searchQuery = query
		if query == "" {
			m.searchResults = nil
			return m, cmd
		}
		// Show instant matches from the local index while the backend
		// search is in flight
		local := m.Search.FilterLocal(query)
		results := make([]domain.MovieSummary, 0, len(local))
		for _, r := range local {
			results = append(results, r.Item.MovieSummary)
		}
		m.searchResults = results
		m.searchCursor = 0
		return m, tea.Batch(cmd, SearchCmd(m.Search, query))
	}
	return m, cmd
}

func (m Model) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.libraryTabs[m.libraryTab]

	switch {
	case key.Matches(msg, m.Keys.Back):
		m.State = StateHome
		return m, nil
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case msg.Type == tea.KeyTab:
		m.libraryTab = (m.libraryTab + 1) % len(m.libraryTabs)
		m.libraryCursor = 0
	case key.Matches(msg, m.Keys.Up):
		if m.libraryCursor > 0 {
			m.libraryCursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.libraryCursor < len(entries)-1 {
			m.libraryCursor++
		}
	case key.Matches(msg, m.Keys.Enter):
		if m.libraryCursor < len(entries) {
			return m.openDetail(entries[m.libraryCursor].Movie.ID, StateLibrary)
		}
	case key.Matches(msg, m.Keys.Remove):
		return m.removeLibraryEntry()
	}
	return m, nil
}

// removeLibraryEntry drops the selected entry from the active tab's
// backing set. Local only: the backend exposes no removal endpoint.
func (m Model) removeLibraryEntry() (tea.Model, tea.Cmd) {
	entries := m.libraryTabs[m.libraryTab]
	if m.libraryCursor >= len(entries) {
		return m, nil
	}
	id := entries[m.libraryCursor].Movie.ID

	switch m.libraryTab {
	case libraryTabWatchlist:
		m.Actions.RemoveMark(id, domain.StatusPlanToWatch)
	case libraryTabWatched:
		m.Actions.RemoveMark(id, domain.StatusWatched)
	case libraryTabRated:
		m.Actions.RemoveRating(id)
	}

	m.libraryTabs[m.libraryTab] = append(entries[:m.libraryCursor], entries[m.libraryCursor+1:]...)
	if m.libraryCursor >= len(m.libraryTabs[m.libraryTab]) && m.libraryCursor > 0 {
		m.libraryCursor--
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		m.State = m.detailFrom
		return m, nil
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Watched):
		if m.detail != nil {
			done, err := m.Actions.MarkWatch(m.detail.ID, domain.StatusWatched)
			if err != nil {
				m.errText = err.Error()
				return m, nil
			}
			return m, AwaitPersistCmd("watch", m.detail.ID, done)
		}
	case key.Matches(msg, m.Keys.Plan):
		if m.detail != nil {
			done, err := m.Actions.MarkWatch(m.detail.ID, domain.StatusPlanToWatch)
			if err != nil {
				m.errText = err.Error()
				return m, nil
			}
			return m, AwaitPersistCmd("watch", m.detail.ID, done)
		}
	case key.Matches(msg, m.Keys.Review):
		if m.detail != nil {
			m.State = StateReviewInput
			m.reviewRating = 0
			m.reviewInput.Focus()
		}
		return m, nil
	default:
		if rating, ok := ratingKey(msg); ok && m.detail != nil {
			return m.rateMovie(m.detail.ID, rating)
		}
	}
	return m, nil
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		m.State = StateHome
		return m, nil
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case msg.Type == tea.KeyCtrlD:
		m.State = StateConfirmWipe
		return m, nil
	case key.Matches(msg, m.Keys.Logout):
		m.State = StateConfirmLogout
		return m, nil
	}
	return m, nil
}

func (m Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.State = StateMovieDetail
		m.reviewInput.Blur()
		return m, nil

	case tea.KeyEnter:
		if m.detail == nil {
			m.State = StateMovieDetail
			return m, nil
		}
		if m.reviewRating == 0 {
			m.errText = "pick a star rating first (ctrl+1..5)"
			return m, nil
		}
		text := strings.TrimSpace(m.reviewInput.Value())
		if text == "" {
			m.errText = "review text is required"
			return m, nil
		}
		m.errText = ""
		return m, SubmitReviewCmd(m.Profiles, domain.Review{
			UserID:  m.session.UserID,
			MovieID: m.detail.ID,
			Rating:  m.reviewRating,
			Text:    text,
		})
	}

	// Star rating while typing uses ctrl+digit to leave digits for text
	switch msg.String() {
	case "ctrl+1", "ctrl+2", "ctrl+3", "ctrl+4", "ctrl+5":
		m.reviewRating = int(msg.String()[5] - '0')
		return m, nil
	}

	var cmd tea.Cmd
	m.reviewInput, cmd = m.reviewInput.Update(msg)
	return m, cmd
}

func (m Model) handlePhaseErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Retry):
		m.State = StateLoading
		return m, ResolvePhaseCmd(m.Gate, m.session)
	case key.Matches(msg, m.Keys.Logout):
		return m, SignOutCmd(m.Sessions)
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleConfirmWipeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		m.State = StateLoading
		return m, WipeUserDataCmd(m.Profiles, m.session.UserID)
	case key.Matches(msg, m.Keys.Deny):
		m.State = StateProfile
		return m, nil
	}
	return m, nil
}

func (m Model) handleConfirmLogoutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		return m, SignOutCmd(m.Sessions)
	case key.Matches(msg, m.Keys.Deny):
		m.State = StateHome
		return m, nil
	}
	return m, nil
}

// ratingKey maps the digit keys to a star rating
func ratingKey(msg tea.KeyMsg) (int, bool) {
	switch msg.String() {
	case "1", "2", "3", "4", "5":
		return int(msg.String()[0] - '0'), true
	}
	return 0, false
}
