package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/azboards/internal/domain"
)

// fieldItem wraps a grouping field name for use in bubbles/list.
type fieldItem struct {
	field   string
	current bool
}

func (i fieldItem) FilterValue() string {
	return i.field
}

func (i fieldItem) Title() string {
	if i.current {
		return i.field + " (current)"
	}
	return i.field
}

func (i fieldItem) Description() string {
	switch i.field {
	case domain.GroupByType:
		return "One column per work item type"
	case domain.GroupByAssignedTo:
		return "One column per assignee"
	default:
		return "One column per workflow state"
	}
}

// fieldDelegate is a custom item delegate for field items.
type fieldDelegate struct{}

func (d fieldDelegate) Height() int                             { return 2 }
func (d fieldDelegate) Spacing() int                            { return 1 }
func (d fieldDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d fieldDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(fieldItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	desc := i.Description()

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// GroupFieldPickerModel displays the fields the board can group by.
type GroupFieldPickerModel struct {
	list list.Model
	err  error
}

// NewGroupFieldPickerModel creates a picker over fields, marking current.
func NewGroupFieldPickerModel(fields []string, current string) GroupFieldPickerModel {
	items := make([]list.Item, len(fields))
	selected := 0
	for i, f := range fields {
		items[i] = fieldItem{field: f, current: f == current}
		if f == current {
			selected = i
		}
	}

	l := list.New(items, fieldDelegate{}, 80, 20)
	l.Title = "Group Columns By"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = TitleStyle
	l.Select(selected)

	return GroupFieldPickerModel{
		list: l,
	}
}

// Init initializes the model.
func (m GroupFieldPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m GroupFieldPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, func() tea.Msg { return QuitMsg{} }
		case "q", "esc":
			// Back to the board without changes
			return m, func() tea.Msg { return closeOverlayMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(fieldItem); ok {
				return m, func() tea.Msg {
					return FieldSelectedMsg{Field: item.field}
				}
			}
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m GroupFieldPickerModel) View() string {
	view := m.list.View()

	if m.err != nil {
		view += ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
	}

	return view
}
