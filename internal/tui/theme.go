package tui

import "github.com/charmbracelet/lipgloss"

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorAccent = ac("27", "141") // purple-ish on dark, like the web checkbox accent
	colorMuted  = ac("240", "243")
	colorDanger = ac("160", "203")

	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleCount    = lipgloss.NewStyle().Foreground(colorMuted)
	styleLabel    = lipgloss.NewStyle().Foreground(colorMuted).Width(8)
	styleFocused  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Width(8)
	styleDone     = lipgloss.NewStyle().Strikethrough(true).Foreground(colorMuted)
	styleSelected = lipgloss.NewStyle().Bold(true)
	styleCursor   = lipgloss.NewStyle().Foreground(colorAccent)
	styleEmpty    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	styleError    = lipgloss.NewStyle().Foreground(colorDanger)
)
