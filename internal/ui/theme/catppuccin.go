package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Overlay0 = lipgloss.Color("#6c7086")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Sky      = lipgloss.Color("#89dceb")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
	Mauve    = lipgloss.Color("#cba6f7")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Bad   = lipgloss.NewStyle().Foreground(Red)
)

// tierColors runs from Cold to Supernova.
var tierColors = [...]lipgloss.Color{
	Overlay0, Sky, Sapphire, Green, Yellow, Peach, Red, Mauve,
}

// TierColor clamps unknown tiers to the nearest end of the scale.
func TierColor(tier int) lipgloss.Color {
	switch {
	case tier < 0:
		return tierColors[0]
	case tier >= len(tierColors):
		return tierColors[len(tierColors)-1]
	}
	return tierColors[tier]
}

func Tier(tier int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierColor(tier)).Bold(tier >= 5)
}
