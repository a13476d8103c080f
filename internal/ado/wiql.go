package ado

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/h0rv/azboards/internal/domain"
	"go.uber.org/zap"
)

// wiqlRequest is the POST body for the wiql endpoint.
type wiqlRequest struct {
	Query string `json:"query"`
}

// wiqlResponse is the relevant subset of the wiql response.
type wiqlResponse struct {
	WorkItems []struct {
		ID  int    `json:"id"`
		URL string `json:"url"`
	} `json:"workItems"`
}

// BuildQuery constructs the WIQL statement selecting ids for a request.
// Clauses are always ordered project, type, assignee.
func BuildQuery(req domain.FetchRequest) string {
	return "SELECT [System.Id] FROM WorkItems WHERE " + strings.Join(queryClauses(req), " AND ")
}

func queryClauses(req domain.FetchRequest) []string {
	clauses := []string{"[System.TeamProject] = " + wiqlLiteral(req.Project)}
	if req.FiltersByType() {
		clauses = append(clauses, "[System.WorkItemType] = "+wiqlLiteral(req.WorkItemType))
	}
	if req.AssignedTo != "" {
		clauses = append(clauses, "[System.AssignedTo] CONTAINS "+wiqlLiteral(req.AssignedTo))
	}
	return clauses
}

// wiqlLiteral quotes a caller-supplied value for a WIQL clause.
// Values are inserted verbatim: embedded quotes are not escaped.
func wiqlLiteral(v string) string {
	return "'" + v + "'"
}

// QueryIDs submits a WIQL statement and returns the matching work item ids in response order.
// A non-success status yields *UpstreamQueryError; an empty slice is a valid result.
func (c *Client) QueryIDs(ctx context.Context, ref domain.ProjectRef, credential, query string) ([]int, error) {
	payload, err := json.Marshal(wiqlRequest{Query: query})
	if err != nil {
		return nil, &InternalError{Op: "encode wiql request", Err: err}
	}

	target := c.endpoint(ref.Organization, ref.Project, "wiql", nil)
	c.logger.Info("posting wiql", zap.String("project", ref.String()))

	resp, err := c.makeRequest(ctx, http.MethodPost, target, credential, bytes.NewReader(payload))
	if err != nil {
		return nil, &InternalError{Op: "wiql query", Err: err}
	}
	if !resp.ok() {
		return nil, &UpstreamQueryError{StatusCode: resp.status, Body: string(resp.body)}
	}

	var decoded wiqlResponse
	if err := json.Unmarshal(resp.body, &decoded); err != nil {
		return nil, &InternalError{Op: "decode wiql response", Err: err}
	}

	ids := make([]int, 0, len(decoded.WorkItems))
	for _, wi := range decoded.WorkItems {
		ids = append(ids, wi.ID)
	}
	return ids, nil
}
