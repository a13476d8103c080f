package store

import (
	"testing"

	"github.com/h0rv/azboards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestRequest() domain.FetchRequest {
	return domain.FetchRequest{
		Organization: "acme",
		Project:      "Website",
		Credential:   "pat",
		WorkItemType: "Bug",
	}
}

func createTestItems() []domain.WorkItem {
	return []domain.WorkItem{
		{ID: 11, Title: "Fix login", State: "Active", Type: "Bug", AssignedTo: "Jane Doe"},
		{ID: 12, Title: "Add search", State: "New", Type: "User Story", AssignedTo: domain.Unassigned},
		{ID: 13, Title: "Old task", State: domain.NotAvailable, Type: "Task", AssignedTo: "Bob"},
		{ID: 14, Title: "Ship it", State: "Closed", Type: "Bug", AssignedTo: "Jane Doe"},
		{ID: 15, Title: "Polish", State: "Active", Type: "Task", AssignedTo: "Bob"},
	}
}

func TestNew(t *testing.T) {
	s := New()
	assert.NotNil(t, s)
	assert.NotNil(t, s.items)
	assert.NotNil(t, s.columns)
	assert.Equal(t, domain.GroupByState, s.GetGroupField())
	assert.Zero(t, s.Len())
}

func TestRequest(t *testing.T) {
	s := New()

	_, err := s.GetRequest()
	assert.ErrorIs(t, err, ErrNoRequest)

	s.SetRequest(createTestRequest())
	req, err := s.GetRequest()
	require.NoError(t, err)
	assert.Equal(t, createTestRequest(), req)
}

func TestUpsertItems(t *testing.T) {
	s := New()
	items := createTestItems()
	s.UpsertItems(items)

	assert.Equal(t, len(items), s.Len())
	for _, item := range items {
		retrieved, err := s.GetItem(item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, *retrieved)
	}

	// Update keeps position, new ID appends
	s.UpsertItems([]domain.WorkItem{
		{ID: 11, Title: "Fix login (again)", State: "Resolved", Type: "Bug", AssignedTo: "Jane Doe"},
		{ID: 99, Title: "Late arrival", State: "New", Type: "Bug", AssignedTo: "Bob"},
	})

	all := s.GetAllItems()
	require.Len(t, all, 6)
	assert.Equal(t, 11, all[0].ID)
	assert.Equal(t, "Fix login (again)", all[0].Title)
	assert.Equal(t, 99, all[5].ID)
	assert.Equal(t, []int{11}, s.GetColumnItemIDs("Resolved"))
}

func TestGetItem(t *testing.T) {
	s := New()
	s.UpsertItems(createTestItems())

	t.Run("existing item", func(t *testing.T) {
		item, err := s.GetItem(12)
		require.NoError(t, err)
		assert.Equal(t, "Add search", item.Title)
	})

	t.Run("nonexistent item", func(t *testing.T) {
		item, err := s.GetItem(404)
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.Nil(t, item)
	})
}

func TestGetAllItems_FetchOrder(t *testing.T) {
	s := New()
	s.UpsertItems(createTestItems())

	var ids []int
	for _, item := range s.GetAllItems() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int{11, 12, 13, 14, 15}, ids)
}

func TestGetColumns(t *testing.T) {
	s := New()
	s.UpsertItems(createTestItems())

	columns := s.GetColumns()
	assert.Equal(t, []int{11, 15}, columns["Active"])
	assert.Equal(t, []int{12}, columns["New"])
	assert.Equal(t, []int{14}, columns["Closed"])
	assert.Equal(t, []int{13}, columns[NoValueKey])

	t.Run("immutability check", func(t *testing.T) {
		columns["Active"] = []int{-1}
		assert.Equal(t, []int{11, 15}, s.GetColumns()["Active"])
		assert.Equal(t, []int{11, 15}, s.GetColumnItemIDs("Active"))
	})

	t.Run("missing column", func(t *testing.T) {
		assert.Empty(t, s.GetColumnItemIDs("Nope"))
	})
}

func TestSetGroupField(t *testing.T) {
	s := New()
	s.UpsertItems(createTestItems())

	require.NoError(t, s.SetGroupField(domain.GroupByType))
	assert.Equal(t, domain.GroupByType, s.GetGroupField())
	assert.Equal(t, []int{11, 14}, s.GetColumnItemIDs("Bug"))
	assert.Equal(t, []int{13, 15}, s.GetColumnItemIDs("Task"))

	require.NoError(t, s.SetGroupField(domain.GroupByAssignedTo))
	assert.Equal(t, []int{12}, s.GetColumnItemIDs(domain.Unassigned))

	err := s.SetGroupField("Priority")
	assert.ErrorIs(t, err, ErrUnknownGroupField)
	assert.Equal(t, domain.GroupByAssignedTo, s.GetGroupField())
}

func TestColumnOrder(t *testing.T) {
	t.Run("state lifecycle", func(t *testing.T) {
		s := New()
		s.UpsertItems(append(createTestItems(),
			domain.WorkItem{ID: 20, State: "Blocked"},
			domain.WorkItem{ID: 21, State: "Approved"},
		))
		assert.Equal(t, []string{"New", "Approved", "Active", "Closed", "Blocked", NoValueKey}, s.ColumnOrder())
	})

	t.Run("alphabetical with unassigned last", func(t *testing.T) {
		s := New()
		s.UpsertItems(createTestItems())
		require.NoError(t, s.SetGroupField(domain.GroupByAssignedTo))
		assert.Equal(t, []string{"Bob", "Jane Doe", domain.Unassigned}, s.ColumnOrder())
	})
}

func TestColumnLabel(t *testing.T) {
	assert.Equal(t, domain.NotAvailable, ColumnLabel(NoValueKey))
	assert.Equal(t, "Active", ColumnLabel("Active"))
}

func TestSetResult(t *testing.T) {
	s := New()
	s.UpsertItems(createTestItems())

	s.SetResult(domain.EmptyResult())
	assert.Zero(t, s.Len())
	assert.Equal(t, domain.NoResultsMessage, s.EmptyMessage())
	assert.Empty(t, s.ColumnOrder())

	s.SetResult(&domain.Result{WorkItems: createTestItems()[:2]})
	assert.Equal(t, 2, s.Len())
	assert.Empty(t, s.EmptyMessage())

	s.SetResult(nil)
	assert.Zero(t, s.Len())
}

func TestClearAndReset(t *testing.T) {
	s := New()
	s.SetRequest(createTestRequest())
	require.NoError(t, s.SetGroupField(domain.GroupByType))
	s.UpsertItems(createTestItems())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.GetColumns())
	assert.Equal(t, domain.GroupByType, s.GetGroupField())
	_, err := s.GetRequest()
	assert.NoError(t, err)

	s.Reset()
	assert.Equal(t, domain.GroupByState, s.GetGroupField())
	_, err = s.GetRequest()
	assert.ErrorIs(t, err, ErrNoRequest)
}
