package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/h0rv/azboards/internal/store"
	"github.com/muesli/reflow/truncate"
	"github.com/pkg/browser"
)

// Layout constants
const (
	minColumnWidth = 20
	maxColumnWidth = 35
	headerLines    = 2  // Title line + hint line
	pageJumpSize   = 10 // Number of items to jump with Ctrl+D/U
)

// openURL is swapped out in tests.
var openURL = browser.OpenURL

// BoardModel shows fetched work items as columns grouped by one field.
type BoardModel struct {
	// Dependencies
	store   *store.Store
	fetcher Fetcher
	link    LinkFunc
	ctx     context.Context

	// UI components
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	// Board state
	columns        []string         // Column keys in display order
	filteredItems  map[string][]int // Column key -> item IDs
	selectedColumn int              // Currently selected column
	columnOffset   int              // Horizontal scroll offset (first visible column index)
	selectedItem   map[string]int   // Column key -> selected item index
	scrollOffset   map[string]int   // Column key -> scroll offset

	// View state
	width      int
	height     int
	showHelp   bool
	filterMode bool
	filterText string
	loading    bool
	errorToast string
}

// NewBoardModel creates a board over the items already in s.
func NewBoardModel(s *store.Store, fetcher Fetcher, link LinkFunc, ctx context.Context) BoardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	ti := textinput.New()
	ti.Placeholder = "Filter by title, id or assignee..."
	ti.Prompt = "/ "

	return BoardModel{
		store:         s,
		fetcher:       fetcher,
		link:          link,
		ctx:           ctx,
		help:          NewHelpModel(DefaultKeyMap()),
		spinner:       sp,
		filterInput:   ti,
		columns:       []string{},
		filteredItems: make(map[string][]int),
		selectedItem:  make(map[string]int),
		scrollOffset:  make(map[string]int),
	}
}

// boardInitMsg triggers initial column build
type boardInitMsg struct{}

// Init builds the columns from the store.
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		func() tea.Msg { return boardInitMsg{} },
	)
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardInitMsg, groupChangedMsg:
		(&m).rebuildColumns()
		(&m).applyFilter()
		return m, nil

	case refetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Refetch failed: %v", msg.err)
			return m, nil
		}
		m.errorToast = ""
		m.store.SetResult(msg.result)
		(&m).rebuildColumns()
		(&m).applyFilter()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			m.filterInput.Blur()
			(&m).applyFilter()
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.filterMode = true
		return m, m.filterInput.Focus()
	case "esc":
		// Clear an applied filter
		if m.filterText != "" {
			m.filterText = ""
			m.filterInput.SetValue("")
			(&m).applyFilter()
		}
	case "h", "left":
		if m.selectedColumn > 0 {
			m.selectedColumn--
			(&m).adjustColumnScroll()
		}
	case "l", "right":
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			(&m).adjustColumnScroll()
		}
	case "j", "down":
		(&m).moveItemSelection(1)
	case "k", "up":
		(&m).moveItemSelection(-1)
	case "g":
		(&m).jumpToItem(0)
	case "G":
		(&m).jumpToItem(-1)
	case "ctrl+d":
		(&m).moveItemSelection(pageJumpSize)
	case "ctrl+u":
		(&m).moveItemSelection(-pageJumpSize)
	case "o":
		if url := m.selectedURL(); url != "" {
			if err := openURL(url); err != nil {
				m.errorToast = fmt.Sprintf("Open failed: %v", err)
			}
		}
	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refetch())
	case "f":
		return m, func() tea.Msg { return changeGroupFieldMsg{} }
	case "t":
		return m, func() tea.Msg { return changeTypeMsg{} }
	case "enter":
		if item := m.getSelectedItem(); item != nil {
			url := m.selectedURL()
			return m, func() tea.Msg { return openDetailMsg{item: item, url: url} }
		}
	}

	return m, nil
}

// View renders the board to fill the terminal.
func (m BoardModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSecondHeader(width))

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	boardHeight := height - headerLines
	if m.filterMode {
		boardHeight--
	}
	if boardHeight < 5 {
		boardHeight = 5
	}

	var mainContent string
	switch {
	case m.showHelp:
		helpLines := strings.Split(m.help.View(width), "\n")
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	case m.loading && m.store.Len() == 0:
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Fetching work items...")
	case len(m.columns) == 0:
		emptyMsg := m.store.EmptyMessage()
		if emptyMsg == "" {
			emptyMsg = domain.NoResultsMessage
		}
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center,
			emptyMsg+"\n\n"+dimStyle.Render("Press 'r' to refetch or 't' to pick another type."))
	default:
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSecondHeader renders navigation hints and position info
func (m BoardModel) renderSecondHeader(width int) string {
	left := "h/l:col j/k:item enter:view o:open f:group"

	right := ""
	if m.errorToast != "" {
		right = errorStyle.Render(m.errorToast)
	} else if len(m.columns) > 0 {
		key := m.columns[m.selectedColumn]
		ids := m.filteredItems[key]

		colPos := fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.columns))
		if len(ids) > 0 {
			right = fmt.Sprintf("%s | item %d/%d", colPos, m.selectedItem[key]+1, len(ids))
		} else {
			right = colPos
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// renderHeader renders the title on the left and status on the right.
func (m BoardModel) renderHeader(width int) string {
	req, err := m.store.GetRequest()
	if err != nil {
		return ""
	}

	workItemType := "All"
	if req.FiltersByType() {
		workItemType = req.WorkItemType
	}
	title := fmt.Sprintf("%s - %s (by %s)", req.Ref(), workItemType, m.store.GetGroupField())
	if req.AssignedTo != "" {
		title += fmt.Sprintf(" @%s", req.AssignedTo)
	}

	var statusParts []string
	if m.loading {
		statusParts = append(statusParts, m.spinner.View()+"fetching")
	}

	totalItems := 0
	for _, ids := range m.filteredItems {
		totalItems += len(ids)
	}
	statusParts = append(statusParts, fmt.Sprintf("%d items", totalItems))

	if m.filterText != "" {
		statusParts = append(statusParts, fmt.Sprintf("/%s", m.filterText))
	}
	statusParts = append(statusParts, "[?]help")

	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}

	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderBoard renders the columns within the given dimensions,
// scrolling horizontally when they overflow.
func (m BoardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)
	if numCols == 0 {
		return ""
	}

	// Border adds 2 lines to the content height
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	maxVisibleCols := totalWidth / minColumnWidth
	if maxVisibleCols < 1 {
		maxVisibleCols = 1
	}
	visibleCols := maxVisibleCols
	if visibleCols > numCols {
		visibleCols = numCols
	}

	colWidth := totalWidth / visibleCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// 2 border + 2 padding
	innerWidth := colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	maxItemLines := colContentHeight - 1
	if maxItemLines < 1 {
		maxItemLines = 1
	}

	startCol := m.columnOffset
	endCol := startCol + visibleCols
	if endCol > numCols {
		endCol = numCols
		startCol = endCol - visibleCols
		if startCol < 0 {
			startCol = 0
		}
	}

	columnViews := make([]string, 0, visibleCols+2)

	if startCol > 0 {
		columnViews = append(columnViews, scrollArrow("◀", colContentHeight+2))
	}

	for i := startCol; i < endCol; i++ {
		key := m.columns[i]
		columnViews = append(columnViews, m.renderColumn(key, i == m.selectedColumn, colWidth, colContentHeight, innerWidth, maxItemLines))
	}

	if endCol < numCols {
		columnViews = append(columnViews, scrollArrow("▶", colContentHeight+2))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

func scrollArrow(arrow string, height int) string {
	return lipgloss.NewStyle().
		Width(2).
		Height(height).
		Foreground(colorAccent).
		Align(lipgloss.Center, lipgloss.Center).
		Render(arrow)
}

// renderColumn renders a single column.
// innerHeight excludes the border, maxItemLines excludes the header.
func (m BoardModel) renderColumn(key string, selected bool, width, innerHeight, innerWidth, maxItemLines int) string {
	ids := m.filteredItems[key]

	headerText := truncate.StringWithTail(fmt.Sprintf("%s (%d)", store.ColumnLabel(key), len(ids)), uint(innerWidth), "…")

	scrollOffset := m.scrollOffset[key]
	selectedIdx := m.selectedItem[key]

	slots := maxItemLines - 1
	if slots < 1 {
		slots = 1
	}

	needUp := scrollOffset > 0
	available := slots
	if needUp {
		available--
	}

	endIdx := scrollOffset + available
	if endIdx > len(ids) {
		endIdx = len(ids)
	}

	needDown := false
	if endIdx < len(ids) {
		needDown = true
		available--
		endIdx = scrollOffset + available
		if endIdx > len(ids) {
			endIdx = len(ids)
		}
	}

	var lines []string
	lines = append(lines, columnHeaderStyle.Render(headerText))

	if needUp {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		item, err := m.store.GetItem(ids[i])
		if err != nil {
			continue
		}

		text := m.formatItemText(item, innerWidth-3)
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> "+text))
		} else {
			lines = append(lines, cardStyle.Render("  "+text))
		}
	}

	if remaining := len(ids) - endIdx; needDown && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(ids) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	borderColor := colorBorder
	if selected {
		borderColor = colorAccent
	}

	// Height sets the content area; do not use MaxHeight, it cuts the border.
	colStyle := lipgloss.NewStyle().
		Width(width-2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(strings.Join(lines, "\n"))
}

// formatItemText renders the title truncated to maxWidth with the ID right-aligned.
func (m BoardModel) formatItemText(item *domain.WorkItem, maxWidth int) string {
	suffix := "#" + strconv.Itoa(item.ID)
	suffixLen := lipgloss.Width(suffix)

	available := maxWidth - suffixLen - 1
	if available < 5 {
		available = 5
	}
	title := truncate.StringWithTail(item.Title, uint(available), "…")

	padding := maxWidth - lipgloss.Width(title) - suffixLen
	if padding < 1 {
		padding = 1
	}

	return title + strings.Repeat(" ", padding) + dimStyle.Render(suffix)
}

// rebuildColumns reads the column order from the store.
func (m *BoardModel) rebuildColumns() {
	m.columns = m.store.ColumnOrder()
	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = 0
		m.columnOffset = 0
	}
}

// applyFilter narrows each column to items matching the filter text.
func (m *BoardModel) applyFilter() {
	m.filteredItems = make(map[string][]int, len(m.columns))
	needle := strings.ToLower(strings.TrimSpace(m.filterText))

	for _, key := range m.columns {
		filtered := make([]int, 0)
		for _, id := range m.store.GetColumnItemIDs(key) {
			item, err := m.store.GetItem(id)
			if err != nil {
				continue
			}
			if needle != "" && !matchesFilter(item, needle) {
				continue
			}
			filtered = append(filtered, id)
		}
		m.filteredItems[key] = filtered
	}

	for key, ids := range m.filteredItems {
		m.scrollOffset[key] = 0
		if m.selectedItem[key] >= len(ids) {
			if len(ids) > 0 {
				m.selectedItem[key] = len(ids) - 1
			} else {
				m.selectedItem[key] = 0
			}
		}
	}
}

// matchesFilter reports whether a lowercased needle appears in the title,
// assignee or ID of the item.
func matchesFilter(item *domain.WorkItem, needle string) bool {
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.AssignedTo), needle) ||
		strings.TrimPrefix(needle, "#") == strconv.Itoa(item.ID)
}

// moveItemSelection moves the selection up or down by delta.
func (m *BoardModel) moveItemSelection(delta int) {
	if len(m.columns) == 0 {
		return
	}

	key := m.columns[m.selectedColumn]
	ids := m.filteredItems[key]
	if len(ids) == 0 {
		return
	}

	idx := m.selectedItem[key] + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ids) {
		idx = len(ids) - 1
	}

	m.selectedItem[key] = idx
	m.adjustScroll(key)
}

// jumpToItem jumps to an item index. Use -1 for the last item.
func (m *BoardModel) jumpToItem(idx int) {
	if len(m.columns) == 0 {
		return
	}

	key := m.columns[m.selectedColumn]
	ids := m.filteredItems[key]
	if len(ids) == 0 {
		return
	}

	if idx < 0 || idx >= len(ids) {
		idx = len(ids) - 1
	}

	m.selectedItem[key] = idx
	m.adjustScroll(key)
}

// adjustScroll keeps the selected item visible.
func (m *BoardModel) adjustScroll(key string) {
	selectedIdx := m.selectedItem[key]
	scrollOffset := m.scrollOffset[key]

	contentHeight := m.height - headerLines - 2
	if m.filterMode {
		contentHeight--
	}
	visible := contentHeight - 3 // header + scroll indicators
	if visible < 3 {
		visible = 3
	}

	if selectedIdx < scrollOffset {
		m.scrollOffset[key] = selectedIdx
	}
	if selectedIdx >= scrollOffset+visible {
		m.scrollOffset[key] = selectedIdx - visible + 1
	}
}

// adjustColumnScroll keeps the selected column visible.
func (m *BoardModel) adjustColumnScroll() {
	if len(m.columns) == 0 || m.width == 0 {
		return
	}

	visibleCols := m.width / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > len(m.columns) {
		visibleCols = len(m.columns)
	}

	if m.selectedColumn < m.columnOffset {
		m.columnOffset = m.selectedColumn
	}
	if m.selectedColumn >= m.columnOffset+visibleCols {
		m.columnOffset = m.selectedColumn - visibleCols + 1
	}
}

// getSelectedItem returns the highlighted work item, or nil.
func (m BoardModel) getSelectedItem() *domain.WorkItem {
	if len(m.columns) == 0 {
		return nil
	}

	key := m.columns[m.selectedColumn]
	ids := m.filteredItems[key]
	if len(ids) == 0 {
		return nil
	}

	idx := m.selectedItem[key]
	if idx >= len(ids) {
		idx = 0
	}

	item, err := m.store.GetItem(ids[idx])
	if err != nil {
		return nil
	}
	return item
}

// selectedURL returns the web link of the highlighted item, or "".
func (m BoardModel) selectedURL() string {
	item := m.getSelectedItem()
	if item == nil || m.link == nil {
		return ""
	}
	req, err := m.store.GetRequest()
	if err != nil {
		return ""
	}
	return m.link(req.Organization, req.Project, item.ID)
}

// refetch runs the stored request again.
func (m BoardModel) refetch() tea.Cmd {
	req, err := m.store.GetRequest()
	if err != nil {
		return func() tea.Msg { return refetchedMsg{err: err} }
	}
	return func() tea.Msg {
		result, err := m.fetcher.Fetch(m.ctx, req)
		return refetchedMsg{result: result, err: err}
	}
}

// Message types
type (
	refetchedMsg struct {
		result *domain.Result
		err    error
	}
	groupChangedMsg     struct{}
	changeGroupFieldMsg struct{}
	changeTypeMsg       struct{}
	closeOverlayMsg     struct{}
	openDetailMsg       struct {
		item *domain.WorkItem
		url  string
	}
)
