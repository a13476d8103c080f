package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/azboards/internal/domain"
)

// typeItem wraps a work item type name for use in bubbles/list.
type typeItem struct {
	name string
}

func (i typeItem) FilterValue() string {
	return i.name
}

func (i typeItem) Title() string {
	return i.name
}

func (i typeItem) Description() string {
	if i.value() == domain.WorkItemTypeAll {
		return "Every work item in the project"
	}
	return fmt.Sprintf("[System.WorkItemType] = '%s'", i.name)
}

// value is what ends up in FetchRequest.WorkItemType.
func (i typeItem) value() string {
	if i.name == "All" {
		return domain.WorkItemTypeAll
	}
	return i.name
}

// typeDelegate is a custom item delegate for type items.
type typeDelegate struct{}

func (d typeDelegate) Height() int                             { return 2 }
func (d typeDelegate) Spacing() int                            { return 1 }
func (d typeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d typeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(typeItem)
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

// TypePickerModel lets the user choose which work item type to fetch.
type TypePickerModel struct {
	list list.Model
	err  error
}

// NewTypePickerModel creates a picker over the given type names.
func NewTypePickerModel(types []string) TypePickerModel {
	items := make([]list.Item, len(types))
	for i, t := range types {
		items[i] = typeItem{name: t}
	}

	l := list.New(items, typeDelegate{}, 80, 20)
	l.Title = "Select a Work Item Type"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return TypePickerModel{
		list: l,
	}
}

// Init initializes the model.
func (m TypePickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m TypePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		// Let the list consume keys while the user is typing a filter
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, func() tea.Msg {
				return QuitMsg{}
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(typeItem); ok {
				return m, func() tea.Msg {
					return TypeSelectedMsg{WorkItemType: item.value()}
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
func (m TypePickerModel) View() string {
	view := m.list.View()

	if m.err != nil {
		view += ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
	}

	return view
}
