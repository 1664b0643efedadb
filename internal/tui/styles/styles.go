package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	AmberGold  = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AmberGold)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(AmberGold)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	ReasonStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Italic(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(AmberGold).
			Padding(0, 1)
)

// Star rating characters
const (
	StarFilled = "★"
	StarEmpty  = "☆"
)

var (
	StarStyle      = lipgloss.NewStyle().Foreground(AmberGold)
	StarEmptyStyle = lipgloss.NewStyle().Foreground(DimGray)
)

// Watch status characters
const (
	WatchedChar = "✓"
	PlanChar    = "◌"
)

var (
	WatchedStyle = lipgloss.NewStyle().Foreground(Green)
	PlanStyle    = lipgloss.NewStyle().Foreground(Blue)
)

// Connectivity indicator
const ConnDot = "●"

var (
	OnlineDot  = lipgloss.NewStyle().Foreground(Green).Render(ConnDot)
	OfflineDot = lipgloss.NewStyle().Foreground(Red).Render(ConnDot)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Padding(1, 2)

	RailTitleStyle = lipgloss.NewStyle().
			Foreground(AmberGold).
			Bold(true)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Status bar
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateDark).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner frames for plain-terminal waits
var SpinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
