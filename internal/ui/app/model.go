package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	heatdto "pursue/internal/modules/heat/dto"
	notifydto "pursue/internal/modules/notify/dto"
	rosterdto "pursue/internal/modules/roster/dto"
	"pursue/internal/ui/components"
	"pursue/internal/ui/theme"
	boardview "pursue/internal/ui/views/board"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type heatPort interface {
	boardview.HeatPort
	Run(ctx context.Context, date *time.Time) (heatdto.BatchOutput, error)
	Calculate(ctx context.Context, groupID string, date *time.Time) (heatdto.CalculateOutput, error)
}

type rosterPort interface {
	Import(ctx context.Context, path string) (rosterdto.ImportOutput, error)
}

type pushPort interface {
	Doctor(ctx context.Context) (notifydto.DoctorResult, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

type batchDoneMsg struct {
	out heatdto.BatchOutput
	err error
}

type calculatedMsg struct {
	out heatdto.CalculateOutput
	err error
}

type importedMsg struct {
	out rosterdto.ImportOutput
	err error
}

type doctorMsg struct {
	out notifydto.DoctorResult
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Calc    key.Binding
	Run     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Calc:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "recalculate group")),
		Run:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "run batch")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Calc, k.Run},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the help overlay, the command
// palette and the status bar; the board view renders the groups.
type Model struct {
	heat   heatPort
	roster rosterPort
	push   pushPort

	board boardview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(heat heatPort, roster rosterPort, push pushPort, viewer string, days int) Model {
	return Model{
		heat:    heat,
		roster:  roster,
		push:    push,
		board:   boardview.New(heat, viewer, days),
		keys:    defaultKeys(),
		help:    help.New(),
		palette: components.NewPalette(),
		status:  "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return m.board.Init()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height - 3})
		return m, cmd

	case batchDoneMsg:
		if msg.err != nil {
			m.status = "heat run failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("heat %s: processed %d, skipped %d, errors %d",
			msg.out.Date, msg.out.Processed, msg.out.Skipped, msg.out.Errors)
		return m, m.board.Refresh()

	case calculatedMsg:
		if msg.err != nil {
			m.status = "calculate failed: " + msg.err.Error()
			return m, nil
		}
		switch {
		case msg.out.Skipped:
			m.status = fmt.Sprintf("%s already calculated for %s", msg.out.GroupID, msg.out.Date)
		case len(msg.out.Milestones) > 0:
			m.status = fmt.Sprintf("%s: %.1f %s (%s)", msg.out.GroupID, msg.out.Heat.Score, msg.out.Heat.TierName, strings.Join(msg.out.Milestones, ", "))
		default:
			m.status = fmt.Sprintf("%s: %.1f %s", msg.out.GroupID, msg.out.Heat.Score, msg.out.Heat.TierName)
		}
		return m, m.board.Refresh()

	case importedMsg:
		if msg.err != nil {
			m.status = "import failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("imported %d groups, %d users, %d progress entries",
			msg.out.Groups, msg.out.Users, msg.out.Progress)
		return m, m.board.Refresh()

	case doctorMsg:
		switch {
		case msg.err != nil:
			m.status = "push doctor: " + msg.err.Error()
		case msg.out.Error != "":
			m.status = fmt.Sprintf("push %s: %s", msg.out.Provider, msg.out.Error)
		default:
			m.status = fmt.Sprintf("push %s %s ok", msg.out.Provider, msg.out.Version)
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executeCommand(msg.Command)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the board while its search filter is active.
		if m.board.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Refresh):
			m.status = "refreshing"
			return m, m.board.Refresh()
		case key.Matches(msg, m.keys.Run):
			m.status = "running heat batch"
			return m, m.runCmd(nil)
		case key.Matches(msg, m.keys.Calc):
			if id, ok := m.board.SelectedGroupID(); ok {
				m.status = "calculating " + id
				return m, m.calculateCmd(id, nil)
			}
		}
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.board.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	bar := theme.Hot.Render("pursue") + theme.Muted.Render("  group heat")
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  r:refresh  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	command, err := components.ParseCommand(input)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m.executeCommand(command)
}

func (m Model) executeCommand(command components.PaletteCommand) (tea.Model, tea.Cmd) {
	switch command.Name {
	case "heat:run":
		m.status = "running heat batch"
		return m, m.runCmd(command.Date)

	case "heat:calc":
		selected, ok := m.board.SelectedGroupID()
		if !ok {
			m.status = "no group selected"
			return m, nil
		}
		m.status = "calculating " + selected
		return m, m.calculateCmd(selected, command.Date)

	case "roster:import":
		return m, m.importCmd(command.Arg)

	case "push:doctor":
		return m, m.doctorCmd()

	case "board:refresh":
		return m, m.board.Refresh()
	}
	return m, nil
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) runCmd(date *time.Time) tea.Cmd {
	return func() tea.Msg {
		out, err := m.heat.Run(context.Background(), date)
		return batchDoneMsg{out: out, err: err}
	}
}

func (m Model) calculateCmd(groupID string, date *time.Time) tea.Cmd {
	return func() tea.Msg {
		out, err := m.heat.Calculate(context.Background(), groupID, date)
		return calculatedMsg{out: out, err: err}
	}
}

func (m Model) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if m.roster == nil {
			return importedMsg{err: fmt.Errorf("roster adapter not configured")}
		}
		out, err := m.roster.Import(context.Background(), path)
		return importedMsg{out: out, err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		if m.push == nil {
			return doctorMsg{err: fmt.Errorf("push adapter not configured")}
		}
		out, err := m.push.Doctor(context.Background())
		return doctorMsg{out: out, err: err}
	}
}
