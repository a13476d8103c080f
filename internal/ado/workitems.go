package ado

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/h0rv/azboards/internal/domain"
	"go.uber.org/zap"
)

// MaxBatchSize is the most ids the work items endpoint accepts in one call.
const MaxBatchSize = 100

// Field reference names requested from the work items endpoint.
const (
	FieldID           = "System.Id"
	FieldTitle        = "System.Title"
	FieldState        = "System.State"
	FieldWorkItemType = "System.WorkItemType"
	FieldAssignedTo   = "System.AssignedTo"
)

// RequestedFields is the fixed field set fetched for every work item.
var RequestedFields = []string{FieldID, FieldTitle, FieldState, FieldWorkItemType, FieldAssignedTo}

// RawWorkItem is a work item as returned by the service.
// Field values stay undecoded so that unexpected shapes degrade to defaults.
type RawWorkItem struct {
	ID     int                        `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// workItemsResponse is the relevant subset of the work items response.
type workItemsResponse struct {
	Count int           `json:"count"`
	Value []RawWorkItem `json:"value"`
}

// GetWorkItems fetches one batch of work items and normalizes them in response order.
// Callers split larger id lists into batches of at most MaxBatchSize.
// A non-success status yields *UpstreamFetchError.
func (c *Client) GetWorkItems(ctx context.Context, ref domain.ProjectRef, credential string, ids []int) ([]domain.WorkItem, error) {
	if len(ids) == 0 {
		return []domain.WorkItem{}, nil
	}

	params := url.Values{}
	params.Set("ids", joinIDs(ids))
	params.Set("fields", strings.Join(RequestedFields, ","))
	target := c.endpoint(ref.Organization, ref.Project, "workitems", params)

	c.logger.Info("fetching work items", zap.String("project", ref.String()), zap.Int("batch_size", len(ids)))

	resp, err := c.makeRequest(ctx, http.MethodGet, target, credential, nil)
	if err != nil {
		return nil, &InternalError{Op: "fetch work items", Err: err}
	}
	if !resp.ok() {
		return nil, &UpstreamFetchError{StatusCode: resp.status, Body: string(resp.body)}
	}

	var decoded workItemsResponse
	if err := json.Unmarshal(resp.body, &decoded); err != nil {
		return nil, &InternalError{Op: "decode work items response", Err: err}
	}

	items := make([]domain.WorkItem, 0, len(decoded.Value))
	for _, raw := range decoded.Value {
		items = append(items, Normalize(raw))
	}
	return items, nil
}

// Normalize flattens a raw work item, substituting defaults for missing fields.
func Normalize(raw RawWorkItem) domain.WorkItem {
	return domain.WorkItem{
		ID:         raw.ID,
		Title:      stringField(raw.Fields, FieldTitle),
		State:      stringField(raw.Fields, FieldState),
		Type:       stringField(raw.Fields, FieldWorkItemType),
		AssignedTo: decodeIdentity(raw.Fields[FieldAssignedTo]).Name(),
	}
}

// stringField returns a string field or domain.NotAvailable when it is missing or not a string.
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return domain.NotAvailable
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.NotAvailable
	}
	return s
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
