package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/h0rv/azboards/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	app, ok := model.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func TestAppModel_TypePickerWhenTypeMissing(t *testing.T) {
	req := testRequest()
	req.WorkItemType = ""
	app := NewAppModel(&mockFetcher{}, testLink, store.New(), context.Background(), req, "")

	assert.Equal(t, ScreenTypePicker, app.currentScreen)
	_, ok := app.currentModel.(TypePickerModel)
	assert.True(t, ok)
}

func TestAppModel_FetchFlow(t *testing.T) {
	fetcher := &mockFetcher{result: &domain.Result{WorkItems: testItems()}}
	s := store.New()
	req := testRequest()
	req.WorkItemType = ""
	app := NewAppModel(fetcher, testLink, s, context.Background(), req, domain.GroupByAssignedTo)

	app, cmd := update(t, app, TypeSelectedMsg{WorkItemType: domain.WorkItemTypeAll})
	require.NotNil(t, cmd)
	assert.Equal(t, ScreenLoading, app.currentScreen)

	// Run the fetch directly rather than the batched spinner tick
	app, _ = update(t, app, app.fetch(app.request)())

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, domain.WorkItemTypeAll, fetcher.calls[0].WorkItemType)
	assert.Equal(t, ScreenBoard, app.currentScreen)
	assert.Equal(t, len(testItems()), s.Len())
	assert.Equal(t, domain.GroupByAssignedTo, s.GetGroupField())

	stored, err := s.GetRequest()
	require.NoError(t, err)
	assert.Equal(t, domain.WorkItemTypeAll, stored.WorkItemType)
}

func TestAppModel_FetchError(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("401: unauthorized")}
	app := NewAppModel(fetcher, testLink, store.New(), context.Background(), testRequest(), "")
	require.NotNil(t, app.Init())

	app, _ = update(t, app, app.fetch(app.request)())

	require.Error(t, app.err)
	assert.Contains(t, app.View(), "401: unauthorized")

	_, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppModel_UnknownGroupField(t *testing.T) {
	app := NewAppModel(&mockFetcher{}, testLink, store.New(), context.Background(), testRequest(), "Priority")
	assert.ErrorIs(t, app.err, store.ErrUnknownGroupField)
	assert.Nil(t, app.Init())
}

func TestAppModel_GroupFieldPickerRoundTrip(t *testing.T) {
	fetcher := &mockFetcher{result: &domain.Result{WorkItems: testItems()}}
	s := store.New()
	app := NewAppModel(fetcher, testLink, s, context.Background(), testRequest(), "")
	app, _ = update(t, app, app.fetch(app.request)())
	require.Equal(t, ScreenBoard, app.currentScreen)

	app, _ = update(t, app, changeGroupFieldMsg{})
	assert.Equal(t, ScreenFieldPicker, app.currentScreen)

	app, _ = update(t, app, FieldSelectedMsg{Field: domain.GroupByType})
	assert.Equal(t, ScreenBoard, app.currentScreen)
	assert.Equal(t, domain.GroupByType, s.GetGroupField())
	require.NotNil(t, app.boardModel)
	assert.Equal(t, []string{"Bug", "Task"}, app.boardModel.columns)
}

func TestAppModel_DetailRoundTrip(t *testing.T) {
	fetcher := &mockFetcher{result: &domain.Result{WorkItems: testItems()}}
	app := NewAppModel(fetcher, testLink, store.New(), context.Background(), testRequest(), "")
	app, _ = update(t, app, app.fetch(app.request)())

	item := testItems()[0]
	app, _ = update(t, app, openDetailMsg{item: &item, url: testLink("acme", "Website", item.ID)})
	assert.Equal(t, ScreenDetail, app.currentScreen)
	assert.Contains(t, app.View(), "Task 1")
	assert.Contains(t, app.View(), "Jane Doe")

	app, _ = update(t, app, closeDetailMsg{})
	assert.Equal(t, ScreenBoard, app.currentScreen)
}
