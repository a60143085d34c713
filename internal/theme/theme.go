package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// BannerStyle frames the consent banner above the inbox.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorYellow).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// UnreadStyle marks unread notification titles.
var UnreadStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)

// ReadStyle dims notifications that have been read.
var ReadStyle = lipgloss.NewStyle().Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ErrorStyle renders error messages.
var ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

// SuccessStyle renders confirmations and correct answers.
var SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

// CategoryStyle returns a color-coded style for a notification category.
func CategoryStyle(c model.NotificationCategory) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch c {
	case model.CategorySystem:
		return base.Foreground(ColorBlue)
	case model.CategoryTestActivity:
		return base.Foreground(ColorGreen)
	case model.CategoryAccount:
		return base.Foreground(ColorMagenta)
	case model.CategoryFeatureUpdate:
		return base.Foreground(ColorYellow)
	case model.CategoryTip:
		return base.Foreground(ColorOrange)
	case model.CategoryError:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// CategoryLabel returns the short label shown next to a notification.
func CategoryLabel(c model.NotificationCategory) string {
	switch c {
	case model.CategorySystem:
		return "SYS"
	case model.CategoryTestActivity:
		return "TEST"
	case model.CategoryAccount:
		return "ACCT"
	case model.CategoryFeatureUpdate:
		return "NEW"
	case model.CategoryTip:
		return "TIP"
	case model.CategoryError:
		return "ERR"
	default:
		return "?"
	}
}

// ArtifactStyle returns a color-coded style for a stored artifact kind.
func ArtifactStyle(k model.ArtifactKind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch k {
	case model.ArtifactPracticeTest:
		return base.Foreground(ColorBlue)
	case model.ArtifactFlashcards:
		return base.Foreground(ColorMagenta)
	case model.ArtifactSummary:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}
