// Package domain defines the normalized domain types for Azure Boards work items.
// These types represent the core concepts independent of the Azure DevOps REST API structure.
package domain

import (
	"errors"
	"strings"
)

// Sentinel values used when a work item field is missing from the remote record.
const (
	NotAvailable = "N/A"
	Unassigned   = "Unassigned"
)

// NoResultsMessage is reported when a query resolves to zero identifiers.
const NoResultsMessage = "No work items found."

// WorkItemTypeAll disables the work item type filter (compared case-insensitively).
const WorkItemTypeAll = "all"

var (
	// ErrMissingOrganization indicates the request has no organization.
	ErrMissingOrganization = errors.New("organization is required")
	// ErrMissingProject indicates the request has no project.
	ErrMissingProject = errors.New("project is required")
	// ErrMissingCredential indicates the request has no access token.
	ErrMissingCredential = errors.New("pat is required")
)

// FetchRequest describes one work item lookup on behalf of a caller.
type FetchRequest struct {
	Organization string `json:"organization"`   // Azure DevOps organization name
	Project      string `json:"project"`        // Project name within the organization
	Credential   string `json:"pat"`            // Personal access token, never logged
	WorkItemType string `json:"work_item_type"` // Optional type filter (e.g. "Bug"); "all" disables it
	AssignedTo   string `json:"assigned_to"`    // Optional assignee substring filter
}

// Validate reports the first missing required field.
func (r FetchRequest) Validate() error {
	if strings.TrimSpace(r.Organization) == "" {
		return ErrMissingOrganization
	}
	if strings.TrimSpace(r.Project) == "" {
		return ErrMissingProject
	}
	if r.Credential == "" {
		return ErrMissingCredential
	}
	return nil
}

// Ref returns the organization/project pair addressed by the request.
func (r FetchRequest) Ref() ProjectRef {
	return ProjectRef{Organization: r.Organization, Project: r.Project}
}

// FiltersByType reports whether the request narrows results to one work item type.
func (r FetchRequest) FiltersByType() bool {
	return r.WorkItemType != "" && !strings.EqualFold(r.WorkItemType, WorkItemTypeAll)
}

// ProjectRef addresses a project inside an Azure DevOps organization.
type ProjectRef struct {
	Organization string
	Project      string
}

// String renders the ref as "organization/project".
func (p ProjectRef) String() string {
	return p.Organization + "/" + p.Project
}

// WorkItem is a work item flattened into a uniform shape.
// Missing fields hold NotAvailable, a missing assignee holds Unassigned.
type WorkItem struct {
	ID         int    `json:"ID"`
	Title      string `json:"Title"`
	State      string `json:"State"`
	Type       string `json:"Type"`
	AssignedTo string `json:"AssignedTo"`
}

// Result is the outcome of a successful fetch.
// Empty is set when the query matched nothing; WorkItems is then empty, never a placeholder record.
type Result struct {
	WorkItems []WorkItem
	Empty     bool
	Message   string
}

// EmptyResult returns the result reported when a query yields no identifiers.
func EmptyResult() *Result {
	return &Result{
		WorkItems: []WorkItem{},
		Empty:     true,
		Message:   NoResultsMessage,
	}
}

// Known work item types offered by the interactive type picker.
var KnownWorkItemTypes = []string{
	"All",
	"Bug",
	"Task",
	"User Story",
	"Product Backlog Item",
	"Feature",
	"Epic",
	"Issue",
}

// Grouping fields for the board view.
const (
	GroupByState      = "State"
	GroupByType       = "Type"
	GroupByAssignedTo = "AssignedTo"
)

// GroupValue returns the value of the named grouping field for the item.
// Unknown field names fall back to State.
func (w WorkItem) GroupValue(field string) string {
	switch field {
	case GroupByType:
		return w.Type
	case GroupByAssignedTo:
		return w.AssignedTo
	default:
		return w.State
	}
}
