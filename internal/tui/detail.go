package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/muesli/reflow/wordwrap"
)

// Layout constants
const (
	headerHeight = 1
	footerHeight = 1
	borderSize   = 2 // Top + bottom border
	labelWidth   = 12
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Width(labelWidth)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailLinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Underline(true)

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)
)

// DetailModel shows every field of one work item.
type DetailModel struct {
	item     *domain.WorkItem
	url      string
	viewport viewport.Model

	errorMsg string

	width  int
	height int
}

// NewDetailModel creates a detail view for item. url may be empty.
func NewDetailModel(item *domain.WorkItem, url string) DetailModel {
	vp := viewport.New(40, 10) // Resized on WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		item:     item,
		url:      url,
		viewport: vp,
	}
	m.updateViewportContent()
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resizeComponents fits the viewport inside the bordered panel.
func (m *DetailModel) resizeComponents() {
	contentHeight := m.height - headerHeight - footerHeight - borderSize
	if contentHeight < 5 {
		contentHeight = 5
	}
	contentWidth := m.width - borderSize - 2 // 2 for padding
	if contentWidth < 20 {
		contentWidth = 20
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.updateViewportContent()
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		if m.url != "" {
			if err := openURL(m.url); err != nil {
				m.errorMsg = fmt.Sprintf("Open failed: %v", err)
			}
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// View renders the detail view
func (m DetailModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	header := dimStyle.Render("[q]back [o]open [j/k]scroll [g/G]top/bottom")

	panel := focusedPanelBorderStyle.
		Padding(0, 1).
		Width(width - borderSize).
		Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, panel, m.renderFooter(width))
}

// renderFooter renders the bottom status bar
func (m DetailModel) renderFooter(width int) string {
	left := ""
	if m.errorMsg != "" {
		left = errorStyle.Render("✗ " + m.errorMsg)
	}

	right := ""
	switch {
	case m.viewport.AtTop():
		right = "TOP"
	case m.viewport.AtBottom():
		right = "END"
	default:
		right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return left + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// updateViewportContent renders the item fields wrapped to the viewport width.
func (m *DetailModel) updateViewportContent() {
	wrapWidth := m.viewport.Width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	valueWidth := wrapWidth - labelWidth
	if valueWidth < 10 {
		valueWidth = 10
	}

	var b strings.Builder

	b.WriteString(dimStyle.Render(fmt.Sprintf("%s #%d", m.item.Type, m.item.ID)))
	b.WriteString("\n\n")
	b.WriteString(detailTitleStyle.Render(wordwrap.String(m.item.Title, wrapWidth)))
	b.WriteString("\n\n")

	fields := []struct {
		label string
		value string
	}{
		{"ID", strconv.Itoa(m.item.ID)},
		{"Type", m.item.Type},
		{"State", m.item.State},
		{"Assigned To", m.item.AssignedTo},
	}
	for _, f := range fields {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			detailLabelStyle.Render(f.label),
			detailValueStyle.Render(wordwrap.String(f.value, valueWidth))))
		b.WriteString("\n")
	}

	if m.url != "" {
		b.WriteString("\n")
		b.WriteString(detailLabelStyle.Render("Link"))
		b.WriteString(detailLinkStyle.Render(m.url))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

type closeDetailMsg struct{}
