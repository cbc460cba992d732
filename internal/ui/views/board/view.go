package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	heatdto "pursue/internal/modules/heat/dto"
	"pursue/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HeatPort interface {
	Board(ctx context.Context) ([]heatdto.BoardEntry, error)
	History(ctx context.Context, groupID, userID string, days int) (heatdto.HistoryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type BoardLoadedMsg struct {
	Entries []heatdto.BoardEntry
	Err     error
}

type HistoryLoadedMsg struct {
	GroupID string
	History heatdto.HistoryOutput
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type groupItem struct {
	entry heatdto.BoardEntry
}

func (i groupItem) Title() string { return i.entry.GroupName }
func (i groupItem) Description() string {
	h := i.entry.Heat
	desc := fmt.Sprintf("%5.1f  %s", h.Score, h.TierName)
	if h.StreakDays > 0 {
		desc += fmt.Sprintf("  streak %d", h.StreakDays)
	}
	return desc
}
func (i groupItem) FilterValue() string { return i.entry.GroupName }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HeatPort
	viewer  string
	days    int
	list    list.Model
	history map[string]HistoryLoadedMsg
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

// New builds the board. viewer is the user whose entitlement decides whether
// the history chart is shown; an empty viewer shows the summary only.
func New(port HeatPort, viewer string, days int) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Heat"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		viewer:  viewer,
		days:    days,
		list:    l,
		history: map[string]HistoryLoadedMsg{},
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

// Refresh reloads the board, keeping the current selection when it survives.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.port.Board(context.Background())
		return BoardLoadedMsg{Entries: entries, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case BoardLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.preview.SetContent(theme.Bad.Render(msg.Err.Error()))
			return m, nil
		}
		selected, _ := m.SelectedGroupID()
		items := make([]list.Item, len(msg.Entries))
		index := 0
		for i, e := range msg.Entries {
			items[i] = groupItem{entry: e}
			if e.GroupID == selected {
				index = i
			}
		}
		m.history = map[string]HistoryLoadedMsg{}
		cmds = append(cmds, m.list.SetItems(items))
		m.list.Select(index)
		if item, ok := m.list.SelectedItem().(groupItem); ok {
			cmds = append(cmds, m.loadHistoryCmd(item.entry.GroupID))
		}
		m.preview.SetContent(m.renderDetail())

	case HistoryLoadedMsg:
		m.history[msg.GroupID] = msg
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(groupItem); ok {
				m.preview.SetContent(m.renderDetail())
				if _, cached := m.history[item.entry.GroupID]; !cached {
					cmds = append(cmds, m.loadHistoryCmd(item.entry.GroupID))
				}
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading heat board…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) SelectedGroupID() (string, bool) {
	if item, ok := m.list.SelectedItem().(groupItem); ok {
		return item.entry.GroupID, true
	}
	return "", false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(groupItem)
	if !ok {
		return theme.Muted.Render("No groups yet. Import a roster with :roster:import <file>")
	}
	e := item.entry
	h := e.Heat
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(e.GroupName) + "\n\n")
	sb.WriteString(theme.Muted.Render("score:  ") + theme.Tier(h.Tier).Render(fmt.Sprintf("%.1f  %s", h.Score, h.TierName)) + "\n")
	sb.WriteString(theme.Muted.Render("streak: ") + fmt.Sprintf("%d days", h.StreakDays) + "\n")
	sb.WriteString(theme.Muted.Render("peak:   ") + fmt.Sprintf("%.1f", h.PeakScore))
	if h.PeakDate != nil {
		sb.WriteString(" on " + *h.PeakDate)
	}
	sb.WriteString("\n")
	if h.YesterdayGCR != nil {
		sb.WriteString(theme.Muted.Render("gcr:    ") + fmt.Sprintf("%.0f%%", *h.YesterdayGCR*100))
		if h.BaselineGCR != nil {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("  (baseline %.0f%%)", *h.BaselineGCR*100)))
		}
		sb.WriteString("\n")
	}

	if m.viewer == "" {
		return sb.String()
	}
	sb.WriteString("\n")
	loaded, ok := m.history[e.GroupID]
	switch {
	case !ok:
		sb.WriteString(theme.Muted.Render("loading history…"))
	case loaded.Err != nil:
		sb.WriteString(theme.Bad.Render("history: " + loaded.Err.Error()))
	case loaded.History.PremiumRequired:
		sb.WriteString(theme.Muted.Render("history is a premium feature"))
	case len(loaded.History.History) == 0:
		sb.WriteString(theme.Muted.Render("no history yet"))
	default:
		points := loaded.History.History
		sb.WriteString(theme.Title.Render(fmt.Sprintf("last %d days", len(points))) + "\n")
		sb.WriteString(Sparkline(points) + "\n")
		sb.WriteString(theme.Muted.Render(points[0].Date + strings.Repeat(" ", max(1, len(points)-20)) + points[len(points)-1].Date))
	}
	return sb.String()
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders one block per history point on the fixed 0-100 scale,
// coloured by the tier held that day.
func Sparkline(points []heatdto.HistoryPoint) string {
	var sb strings.Builder
	for _, p := range points {
		idx := int(p.Score / 100 * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		sb.WriteString(theme.Tier(p.Tier).Render(string(sparkBlocks[idx])))
	}
	return sb.String()
}

func (m Model) loadHistoryCmd(groupID string) tea.Cmd {
	if m.viewer == "" {
		return nil
	}
	return func() tea.Msg {
		history, err := m.port.History(context.Background(), groupID, m.viewer, m.days)
		return HistoryLoadedMsg{GroupID: groupID, History: history, Err: err}
	}
}
