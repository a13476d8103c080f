// Package tui provides Bubble Tea models for the read-only work item board.
package tui

import (
	"context"

	"github.com/h0rv/azboards/internal/domain"
)

// Fetcher runs the work item pipeline. *relay.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.FetchRequest) (*domain.Result, error)
}

// LinkFunc builds the browser URL of a work item.
type LinkFunc func(org, project string, id int) string

// TypeSelectedMsg is emitted when the user selects a work item type.
type TypeSelectedMsg struct {
	WorkItemType string
}

// FieldSelectedMsg is emitted when the user selects a grouping field.
type FieldSelectedMsg struct {
	Field string
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
