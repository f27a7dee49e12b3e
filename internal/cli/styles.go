package cli

import "github.com/charmbracelet/lipgloss"

const Logo = "📡"
const Version = "0.1.0"

var (
	Accent = lipgloss.Color("#00D4FF")
	Subtle = lipgloss.Color("#555555")
	Green  = lipgloss.Color("#04B575")
	Yellow = lipgloss.Color("#FFB454")
	Red    = lipgloss.Color("#FF4444")

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	BoldStyle  = lipgloss.NewStyle().Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(Yellow)
	ErrStyle   = lipgloss.NewStyle().Foreground(Red)
	OkStyle    = lipgloss.NewStyle().Foreground(Green).Bold(true)
	DimStyle   = lipgloss.NewStyle().Foreground(Subtle)
)

func StatusBadge(ok bool) string {
	if ok {
		return OkStyle.Render("✓")
	}
	return DimStyle.Render("✗")
}

// SeverityStyle returns the style used to render a bug severity label.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "high":
		return ErrStyle
	case "medium":
		return WarnStyle
	default:
		return DimStyle
	}
}
