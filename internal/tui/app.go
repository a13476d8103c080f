package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/h0rv/azboards/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenTypePicker
	ScreenFieldPicker
	ScreenBoard
	ScreenDetail
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from type selection -> fetch -> board view.
type AppModel struct {
	// Dependencies
	fetcher Fetcher
	link    LinkFunc
	store   *store.Store
	ctx     context.Context

	request domain.FetchRequest

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	spinner       spinner.Model
	err           error
	loadingMsg    string

	// Cached to preserve selection across screen transitions
	boardModel *BoardModel
}

// NewAppModel creates the root model for req. An empty req.WorkItemType opens
// the type picker first; groupField may be empty to keep the State default.
func NewAppModel(fetcher Fetcher, link LinkFunc, s *store.Store, ctx context.Context, req domain.FetchRequest, groupField string) AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := AppModel{
		fetcher:       fetcher,
		link:          link,
		store:         s,
		ctx:           ctx,
		request:       req,
		currentScreen: ScreenLoading,
		spinner:       sp,
		loadingMsg:    fmt.Sprintf("Fetching work items from %s...", req.Ref()),
	}

	if groupField != "" {
		if err := s.SetGroupField(groupField); err != nil {
			m.err = err
		}
	}

	if req.WorkItemType == "" {
		m.currentScreen = ScreenTypePicker
		m.currentModel = NewTypePickerModel(domain.KnownWorkItemTypes)
	}
	return m
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	if m.err != nil {
		return nil
	}
	if m.currentModel != nil {
		return m.currentModel.Init()
	}
	return tea.Batch(m.spinner.Tick, m.fetch(m.request))
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.currentScreen != ScreenBoard {
			return m, tea.Quit
		}
		if m.err != nil && (msg.String() == "q" || msg.String() == "esc") {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if m.currentScreen == ScreenLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case TypeSelectedMsg:
		m.request.WorkItemType = msg.WorkItemType
		m.currentScreen = ScreenLoading
		m.currentModel = nil
		m.loadingMsg = fmt.Sprintf("Fetching %s work items from %s...", msg.WorkItemType, m.request.Ref())
		return m, tea.Batch(m.spinner.Tick, m.fetch(m.request))

	case fetchedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch work items: %w", msg.err)
			return m, nil
		}
		m.store.SetRequest(m.request)
		m.store.SetResult(msg.result)

		m.currentScreen = ScreenBoard
		board := NewBoardModel(m.store, m.fetcher, m.link, m.ctx)
		m.boardModel = &board
		m.currentModel = board
		return m, board.Init()

	case changeGroupFieldMsg:
		m.currentScreen = ScreenFieldPicker
		picker := NewGroupFieldPickerModel(store.GroupFields, m.store.GetGroupField())
		m.currentModel = picker
		return m, picker.Init()

	case FieldSelectedMsg:
		if err := m.store.SetGroupField(msg.Field); err != nil {
			m.err = err
			return m, nil
		}
		return m.backToBoard(groupChangedMsg{})

	case closeOverlayMsg:
		return m.backToBoard(nil)

	case changeTypeMsg:
		m.currentScreen = ScreenTypePicker
		picker := NewTypePickerModel(domain.KnownWorkItemTypes)
		m.currentModel = picker
		return m, picker.Init()

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detail := NewDetailModel(msg.item, msg.url)
		m.currentModel = detail
		return m, detail.Init()

	case closeDetailMsg:
		return m.backToBoard(nil)
	}

	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		if m.currentScreen == ScreenBoard {
			if bm, ok := m.currentModel.(BoardModel); ok {
				m.boardModel = &bm
			}
		}
		return m, cmd
	}

	return m, nil
}

// backToBoard restores the cached board and forwards msg to it when non-nil.
func (m AppModel) backToBoard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.boardModel == nil {
		return m, nil
	}
	m.currentScreen = ScreenBoard
	var board tea.Model = *m.boardModel
	var cmd tea.Cmd
	if msg != nil {
		board, cmd = board.Update(msg)
		if bm, ok := board.(BoardModel); ok {
			m.boardModel = &bm
		}
	}
	m.currentModel = board
	// Request window size to ensure proper rendering
	return m, tea.Batch(cmd, tea.WindowSize())
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.spinner.View() + " " + m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// fetch runs the pipeline for req in the background.
func (m AppModel) fetch(req domain.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := m.fetcher.Fetch(m.ctx, req)
		return fetchedMsg{result: result, err: err}
	}
}

type fetchedMsg struct {
	result *domain.Result
	err    error
}
