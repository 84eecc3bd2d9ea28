package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/transcript-review/internal/confidence"
)

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#F44336")
	ColorGreen   = lipgloss.Color("#4CAF50")
	ColorLime    = lipgloss.Color("#8BC34A")
	ColorOrange  = lipgloss.Color("#FF9800")
	ColorBlue    = lipgloss.Color("#1976D2")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorBlack   = lipgloss.Color("#000000")
)

// TierColor returns the color used for a confidence tier.
func TierColor(t confidence.Tier) lipgloss.Color {
	switch t {
	case confidence.Excellent:
		return ColorGreen
	case confidence.Good:
		return ColorLime
	case confidence.Fair:
		return ColorOrange
	}
	return ColorRed
}

// TierStyle colors text in a tier's color.
func TierStyle(t confidence.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierColor(t))
}

// TierActiveStyle renders a selected tier button.
func TierActiveStyle(t confidence.Tier) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(TierColor(t)).
		Foreground(ColorBlack).
		Bold(true)
}

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	PlayingStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(lipgloss.Color("#0D3B66"))

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ProgressFillStyle = lipgloss.NewStyle().
				Foreground(ColorBlue)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(ColorDimGray)

	InaccurateStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)
)

// Status chip styles for the listing.
var (
	StatusCompletedStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	StatusProcessingStyle = lipgloss.NewStyle().
				Foreground(ColorBlue).
				Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	StatusIdleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// Notification styles by severity.
var (
	NoticeInfoStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	NoticeSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	NoticeWarningStyle = lipgloss.NewStyle().
				Foreground(ColorOrange)

	NoticeErrorStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)
)
