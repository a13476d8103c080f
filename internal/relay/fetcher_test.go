package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/h0rv/azboards/internal/ado"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// fakeSource records calls and serves canned results.
type fakeSource struct {
	mu         sync.Mutex
	ids        []int
	queryErr   error
	failBatch  int // 1-based batch index that fails, 0 for none
	fetchErr   error
	queries    []string
	batches    [][]int
	queryCalls int
}

func (f *fakeSource) QueryIDs(ctx context.Context, ref domain.ProjectRef, credential, query string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	f.queries = append(f.queries, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.ids, nil
}

func (f *fakeSource) GetWorkItems(ctx context.Context, ref domain.ProjectRef, credential string, ids []int) ([]domain.WorkItem, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]int(nil), ids...))
	n := len(f.batches)
	f.mu.Unlock()

	if f.failBatch != 0 && n == f.failBatch {
		return nil, f.fetchErr
	}
	items := make([]domain.WorkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.WorkItem{ID: id, Title: fmt.Sprintf("item %d", id)})
	}
	return items, nil
}

func sequence(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func testRequest() domain.FetchRequest {
	return domain.FetchRequest{
		Organization: "acme",
		Project:      "Website",
		Credential:   "secret",
		WorkItemType: "Bug",
		AssignedTo:   "jane",
	}
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{name: "empty", n: 0, size: 100, sizes: []int{}},
		{name: "single partial", n: 3, size: 100, sizes: []int{3}},
		{name: "exact", n: 200, size: 100, sizes: []int{100, 100}},
		{name: "250", n: 250, size: 100, sizes: []int{100, 100, 50}},
		{name: "invalid size defaults", n: 101, size: 0, sizes: []int{100, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Batches(sequence(tt.n), tt.size)
			sizes := make([]int, 0, len(batches))
			var flat []int
			for _, b := range batches {
				sizes = append(sizes, len(b))
				flat = append(flat, b...)
			}
			assert.Equal(t, tt.sizes, sizes)
			if tt.n > 0 {
				assert.Equal(t, sequence(tt.n), flat, "batches must concatenate back to the input order")
			}
		})
	}
}

func TestFetch_ZeroIdentifiersSkipsHydration(t *testing.T) {
	src := &fakeSource{}
	result, err := New(src).Fetch(context.Background(), testRequest())

	require.NoError(t, err)
	assert.True(t, result.Empty)
	assert.Empty(t, result.WorkItems)
	assert.Equal(t, domain.NoResultsMessage, result.Message)
	assert.Equal(t, 1, src.queryCalls)
	assert.Empty(t, src.batches, "bulk fetch must not be called")
}

func TestFetch_BatchesOf100InOrder(t *testing.T) {
	src := &fakeSource{ids: sequence(250)}
	result, err := New(src).Fetch(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, src.batches, 3)
	assert.Len(t, src.batches[0], 100)
	assert.Len(t, src.batches[1], 100)
	assert.Len(t, src.batches[2], 50)
	assert.Equal(t, 1, src.batches[0][0])
	assert.Equal(t, 101, src.batches[1][0])
	assert.Equal(t, 201, src.batches[2][0])

	got := make([]int, 0, len(result.WorkItems))
	for _, wi := range result.WorkItems {
		got = append(got, wi.ID)
	}
	if diff := cmp.Diff(sequence(250), got); diff != "" {
		t.Fatalf("work item order mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, result.Empty)
}

func TestFetch_PassesBuiltQuery(t *testing.T) {
	src := &fakeSource{ids: []int{1}}
	_, err := New(src).Fetch(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, src.queries, 1)
	assert.Equal(t, ado.BuildQuery(testRequest()), src.queries[0])
}

func TestFetch_QueryFailure(t *testing.T) {
	src := &fakeSource{queryErr: &ado.UpstreamQueryError{StatusCode: 401, Body: "unauthorized"}}
	result, err := New(src).Fetch(context.Background(), testRequest())

	require.Error(t, err)
	assert.Nil(t, result)

	var qe *ado.UpstreamQueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 401, qe.StatusCode)
	assert.Equal(t, "unauthorized", qe.Body)
	assert.Empty(t, src.batches)
}

func TestFetch_SecondBatchFailureReturnsNothing(t *testing.T) {
	src := &fakeSource{
		ids:       sequence(250),
		failBatch: 2,
		fetchErr:  &ado.UpstreamFetchError{StatusCode: 503, Body: "busy"},
	}
	result, err := New(src).Fetch(context.Background(), testRequest())

	require.Error(t, err)
	assert.Nil(t, result, "no partial results on a failed batch")
	assert.Len(t, src.batches, 2, "remaining batches are not attempted")

	var fe *ado.UpstreamFetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 503, fe.StatusCode)
	assert.Equal(t, ado.KindFetch, ado.KindOf(err))
}

func TestFetch_ValidatesRequest(t *testing.T) {
	src := &fakeSource{}
	req := testRequest()
	req.Credential = ""

	_, err := New(src).Fetch(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, src.queryCalls)
}

func TestFetch_ConcurrentKeepsOrder(t *testing.T) {
	src := &fakeSource{ids: sequence(450)}
	result, err := New(src, WithConcurrency(3)).Fetch(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Len(t, src.batches, 5)
	got := make([]int, 0, len(result.WorkItems))
	for _, wi := range result.WorkItems {
		got = append(got, wi.ID)
	}
	if diff := cmp.Diff(sequence(450), got); diff != "" {
		t.Fatalf("work item order mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_ConcurrentFailure(t *testing.T) {
	src := &fakeSource{
		ids:       sequence(300),
		failBatch: 1,
		fetchErr:  &ado.UpstreamFetchError{StatusCode: 500, Body: "boom"},
	}
	result, err := New(src, WithConcurrency(2)).Fetch(context.Background(), testRequest())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ado.KindFetch, ado.KindOf(err))
}

func TestFetch_WithBatchSize(t *testing.T) {
	src := &fakeSource{ids: sequence(10)}
	_, err := New(src, WithBatchSize(4)).Fetch(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, src.batches, 3)
	assert.Equal(t, []int{9, 10}, src.batches[2])
}

// azureDouble emulates the two Azure Boards endpoints used by the pipeline.
type azureDouble struct {
	mu        sync.Mutex
	ids       []int
	records   map[int]string
	bulkCalls []string
}

func (a *azureDouble) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_apis/wit/wiql"):
		refs := make([]string, 0, len(a.ids))
		for _, id := range a.ids {
			refs = append(refs, fmt.Sprintf(`{"id":%d}`, id))
		}
		_, _ = io.WriteString(w, `{"workItems":[`+strings.Join(refs, ",")+`]}`)
	case strings.HasSuffix(r.URL.Path, "/_apis/wit/workitems"):
		ids := r.URL.Query().Get("ids")
		a.mu.Lock()
		a.bulkCalls = append(a.bulkCalls, ids)
		a.mu.Unlock()
		values := make([]string, 0)
		for _, part := range strings.Split(ids, ",") {
			var id int
			_, _ = fmt.Sscanf(part, "%d", &id)
			values = append(values, a.records[id])
		}
		_, _ = io.WriteString(w, `{"count":`+fmt.Sprint(len(values))+`,"value":[`+strings.Join(values, ",")+`]}`)
	default:
		http.NotFound(w, r)
	}
}

func TestFetch_EndToEndAgainstAzureDouble(t *testing.T) {
	double := &azureDouble{
		ids: []int{1, 2, 3},
		records: map[int]string{
			1: `{"id":1,"fields":{"System.Id":1,"System.Title":"Broken link","System.State":"New","System.WorkItemType":"Bug","System.AssignedTo":{"displayName":"Jane Doe","uniqueName":"jane@acme.com"}}}`,
			2: `{"id":2,"fields":{"System.Id":2,"System.Title":"Slow checkout","System.State":"Active","System.WorkItemType":"Bug","System.AssignedTo":"Jane Roe"}}`,
			3: `{"id":3,"fields":{"System.Id":3,"System.Title":"Typo in footer","System.State":"Resolved","System.WorkItemType":"Bug"}}`,
		},
	}
	server := httptest.NewServer(double)
	defer server.Close()

	fetcher := New(ado.New(ado.WithBaseURL(server.URL)))
	result, err := fetcher.Fetch(context.Background(), testRequest())
	require.NoError(t, err)

	want := []domain.WorkItem{
		{ID: 1, Title: "Broken link", State: "New", Type: "Bug", AssignedTo: "Jane Doe"},
		{ID: 2, Title: "Slow checkout", State: "Active", Type: "Bug", AssignedTo: "Jane Roe"},
		{ID: 3, Title: "Typo in footer", State: "Resolved", Type: "Bug", AssignedTo: domain.Unassigned},
	}
	if diff := cmp.Diff(want, result.WorkItems); diff != "" {
		t.Fatalf("work items mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"1,2,3"}, double.bulkCalls)
}

func TestFetch_EndToEndQueryUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "TF400813: not authorized")
	}))
	defer server.Close()

	_, err := New(ado.New(ado.WithBaseURL(server.URL))).Fetch(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, ado.KindQuery, ado.KindOf(err))
	assert.Equal(t, http.StatusUnauthorized, ado.StatusCode(err))
	assert.Contains(t, err.Error(), "TF400813: not authorized")
}
