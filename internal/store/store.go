// Package store provides an in-memory state layer for fetched work items.
// It keeps items in fetch order and groups them into board columns by a
// selectable field, hiding the grouping logic behind a small interface.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/h0rv/azboards/internal/domain"
)

var (
	// ErrNoRequest indicates no fetch request has been set in the store.
	ErrNoRequest = errors.New("no request set")
	// ErrItemNotFound indicates the requested work item does not exist.
	ErrItemNotFound = errors.New("work item not found")
	// ErrUnknownGroupField indicates a grouping field the board cannot use.
	ErrUnknownGroupField = errors.New("unknown grouping field")
)

// NoValueKey is the column key for items whose grouping value is blank or N/A.
const NoValueKey = "_no_value_"

// GroupFields lists the fields the board can group by, default first.
var GroupFields = []string{
	domain.GroupByState,
	domain.GroupByType,
	domain.GroupByAssignedTo,
}

// stateOrder is the usual lifecycle order of Azure Boards states across the
// Agile, Scrum and Basic process templates. Unknown states sort after these.
var stateOrder = []string{
	"New",
	"To Do",
	"Proposed",
	"Approved",
	"Committed",
	"Active",
	"In Progress",
	"Doing",
	"Resolved",
	"Closed",
	"Done",
	"Removed",
}

// Store manages the work items shown by the board.
// It is not safe for concurrent use; the TUI only touches it from Update.
type Store struct {
	request    *domain.FetchRequest
	groupField string

	items map[int]*domain.WorkItem // ID -> item
	order []int                    // IDs in fetch order

	// Column mapping: group value -> []ID, in fetch order.
	// NoValueKey holds items without a usable value.
	columns map[string][]int

	// Set when the last fetch matched nothing.
	emptyMessage string
}

// New creates a new empty Store grouped by State.
func New() *Store {
	return &Store{
		groupField: domain.GroupByState,
		items:      make(map[int]*domain.WorkItem),
		columns:    make(map[string][]int),
	}
}

// SetRequest records the request the items were fetched with.
func (s *Store) SetRequest(req domain.FetchRequest) {
	s.request = &req
}

// GetRequest returns the current request, or ErrNoRequest if none is set.
func (s *Store) GetRequest() (domain.FetchRequest, error) {
	if s.request == nil {
		return domain.FetchRequest{}, ErrNoRequest
	}
	return *s.request, nil
}

// SetGroupField changes the field used for columns and rebuilds them.
func (s *Store) SetGroupField(field string) error {
	for _, f := range GroupFields {
		if f == field {
			s.groupField = field
			s.rebuildColumns()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownGroupField, field)
}

// GetGroupField returns the current grouping field.
func (s *Store) GetGroupField() string {
	return s.groupField
}

// SetResult replaces the stored items with a fetch result.
func (s *Store) SetResult(result *domain.Result) {
	s.Clear()
	if result == nil {
		return
	}
	if result.Empty {
		s.emptyMessage = result.Message
	}
	s.UpsertItems(result.WorkItems)
}

// EmptyMessage returns the message of an empty fetch, or "".
func (s *Store) EmptyMessage() string {
	return s.emptyMessage
}

// UpsertItems adds or updates work items. New IDs are appended to the fetch
// order, known IDs keep their position.
func (s *Store) UpsertItems(items []domain.WorkItem) {
	for i := range items {
		item := items[i]
		if _, exists := s.items[item.ID]; !exists {
			s.order = append(s.order, item.ID)
		}
		s.items[item.ID] = &item
	}
	if len(items) > 0 {
		s.emptyMessage = ""
	}
	s.rebuildColumns()
}

// GetItem retrieves a work item by ID, returning ErrItemNotFound if absent.
func (s *Store) GetItem(id int) (*domain.WorkItem, error) {
	item, exists := s.items[id]
	if !exists {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// GetAllItems returns all items in fetch order.
func (s *Store) GetAllItems() []*domain.WorkItem {
	items := make([]*domain.WorkItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	return len(s.order)
}

// GetColumns returns a copy of the column structure (group value -> IDs).
func (s *Store) GetColumns() map[string][]int {
	result := make(map[string][]int, len(s.columns))
	for key, ids := range s.columns {
		cp := make([]int, len(ids))
		copy(cp, ids)
		result[key] = cp
	}
	return result
}

// GetColumnItemIDs returns the IDs in one column (group value or NoValueKey).
func (s *Store) GetColumnItemIDs(key string) []int {
	ids, exists := s.columns[key]
	if !exists {
		return []int{}
	}
	result := make([]int, len(ids))
	copy(result, ids)
	return result
}

// ColumnOrder returns the column keys in display order.
// State columns follow the usual lifecycle, other fields sort alphabetically.
// Unassigned and NoValueKey always come last.
func (s *Store) ColumnOrder() []string {
	keys := make([]string, 0, len(s.columns))
	var trailing []string
	for key := range s.columns {
		switch key {
		case NoValueKey, domain.Unassigned:
			continue
		}
		keys = append(keys, key)
	}

	rank := func(key string) int {
		if s.groupField != domain.GroupByState {
			return len(stateOrder)
		}
		for i, state := range stateOrder {
			if strings.EqualFold(state, key) {
				return i
			}
		}
		return len(stateOrder)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	if _, ok := s.columns[domain.Unassigned]; ok {
		trailing = append(trailing, domain.Unassigned)
	}
	if _, ok := s.columns[NoValueKey]; ok {
		trailing = append(trailing, NoValueKey)
	}
	return append(keys, trailing...)
}

// ColumnLabel returns the display name for a column key.
func ColumnLabel(key string) string {
	if key == NoValueKey {
		return domain.NotAvailable
	}
	return key
}

// rebuildColumns regroups items by the current field, keeping fetch order.
func (s *Store) rebuildColumns() {
	s.columns = make(map[string][]int)
	for _, id := range s.order {
		key := s.items[id].GroupValue(s.groupField)
		if key == "" || key == domain.NotAvailable {
			key = NoValueKey
		}
		s.columns[key] = append(s.columns[key], id)
	}
}

// Clear drops all items, preserving the request and group field.
func (s *Store) Clear() {
	s.items = make(map[int]*domain.WorkItem)
	s.order = nil
	s.columns = make(map[string][]int)
	s.emptyMessage = ""
}

// Reset completely resets the store to initial state.
func (s *Store) Reset() {
	s.request = nil
	s.groupField = domain.GroupByState
	s.Clear()
}
