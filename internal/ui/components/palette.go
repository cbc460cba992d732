package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pursue/internal/platform/clock"
	"pursue/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command that parsed.
type PaletteSubmitMsg struct {
	Input   string
	Command PaletteCommand
}

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle  = lipgloss.NewStyle().Foreground(theme.Subtext0)
	errorStyle = lipgloss.NewStyle().Foreground(theme.Red)
)

// hints must stay in sync with ParseCommand.
var paletteHints = []string{
	"heat:run [YYYY-MM-DD]",
	"heat:calc [YYYY-MM-DD]",
	"roster:import <file>",
	"push:doctor",
	"board:refresh",
}

// PaletteCommand is a parsed palette line. Date is only set for the heat
// commands and Arg only for roster:import.
type PaletteCommand struct {
	Name string
	Date *time.Time
	Arg  string
}

// ParseCommand validates a palette line against the known commands.
func ParseCommand(input string) (PaletteCommand, error) {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return PaletteCommand{}, fmt.Errorf("empty command")
	}
	cmd := PaletteCommand{Name: parts[0]}
	args := parts[1:]

	switch cmd.Name {
	case "heat:run", "heat:calc":
		if len(args) > 1 {
			return PaletteCommand{}, fmt.Errorf("usage: %s [YYYY-MM-DD]", cmd.Name)
		}
		if len(args) == 1 {
			d, err := clock.ParseDate(args[0])
			if err != nil {
				return PaletteCommand{}, fmt.Errorf("%s: %w", cmd.Name, err)
			}
			cmd.Date = &d
		}
	case "roster:import":
		if len(args) == 0 {
			return PaletteCommand{}, fmt.Errorf("usage: roster:import <file>")
		}
		cmd.Arg = strings.TrimSpace(strings.TrimPrefix(input, cmd.Name))
	case "push:doctor", "board:refresh":
		if len(args) > 0 {
			return PaletteCommand{}, fmt.Errorf("usage: %s", cmd.Name)
		}
	default:
		return PaletteCommand{}, fmt.Errorf("unknown command: %s", cmd.Name)
	}
	return cmd, nil
}

// Palette is a command-palette overlay backed by bubbles/textinput.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	err     error
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.err = nil
	p.input.SetValue("")
	return p.input.Focus()
}

// Err is the parse error shown under the input, if any.
func (p Palette) Err() error { return p.err }

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if val == "" {
				p.visible = false
				p.input.Blur()
				return p, func() tea.Msg { return PaletteCancelMsg{} }
			}
			command, err := ParseCommand(val)
			if err != nil {
				// stay open so the line can be fixed in place
				p.err = err
				return p, nil
			}
			p.visible = false
			p.err = nil
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val, Command: command} }
		}
		p.err = nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	prefix := strings.ToLower(p.input.Value())
	var matching []string
	for _, h := range paletteHints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			matching = append(matching, h)
			if len(matching) == 5 {
				break
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if p.err != nil {
		sb.WriteString(errorStyle.Render("  "+p.err.Error()) + "\n")
	}
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
