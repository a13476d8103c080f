// Package relay runs the work item pipeline: build a WIQL query, resolve it to ids,
// then hydrate the ids in bounded batches into normalized work items.
package relay

import (
	"context"
	"fmt"

	"github.com/h0rv/azboards/internal/ado"
	"github.com/h0rv/azboards/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the remote work item service. *ado.Client implements it.
type Source interface {
	QueryIDs(ctx context.Context, ref domain.ProjectRef, credential, query string) ([]int, error)
	GetWorkItems(ctx context.Context, ref domain.ProjectRef, credential string, ids []int) ([]domain.WorkItem, error)
}

// Fetcher resolves FetchRequests against a Source.
// It keeps no per-request state, so one Fetcher may serve concurrent requests.
type Fetcher struct {
	source      Source
	logger      *zap.Logger
	batchSize   int
	concurrency int
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithBatchSize lowers the number of ids per bulk call. Values outside 1..ado.MaxBatchSize are ignored.
func WithBatchSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 && n <= ado.MaxBatchSize {
			f.batchSize = n
		}
	}
}

// WithConcurrency allows up to n batches in flight at once.
// The default of 1 fetches batches strictly one after another.
// With n > 1 the first failing batch cancels its in-flight siblings.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// New creates a Fetcher reading from source.
func New(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:      source,
		logger:      zap.NewNop(),
		batchSize:   ado.MaxBatchSize,
		concurrency: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fetch runs the whole pipeline for one request.
// Zero matching ids returns domain.EmptyResult without any bulk fetch.
// Any failure aborts the request; no partial results are returned.
func (f *Fetcher) Fetch(ctx context.Context, req domain.FetchRequest) (*domain.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ref := req.Ref()
	log := f.logger.With(zap.String("project", ref.String()))

	query := ado.BuildQuery(req)
	log.Debug("built wiql query", zap.String("query", query))

	ids, err := f.source.QueryIDs(ctx, ref, req.Credential, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query work item ids: %w", err)
	}
	if len(ids) == 0 {
		log.Info("query matched no work items")
		return domain.EmptyResult(), nil
	}

	items, err := f.hydrate(ctx, ref, req.Credential, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work items: %w", err)
	}

	log.Info("fetched work items", zap.Int("count", len(items)))
	return &domain.Result{WorkItems: items}, nil
}

// hydrate fetches ids batch by batch and concatenates the results in batch order.
func (f *Fetcher) hydrate(ctx context.Context, ref domain.ProjectRef, credential string, ids []int) ([]domain.WorkItem, error) {
	batches := Batches(ids, f.batchSize)
	if f.concurrency <= 1 || len(batches) == 1 {
		items := make([]domain.WorkItem, 0, len(ids))
		for i, batch := range batches {
			got, err := f.source.GetWorkItems(ctx, ref, credential, batch)
			if err != nil {
				return nil, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
			}
			items = append(items, got...)
		}
		return items, nil
	}

	results := make([][]domain.WorkItem, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			got, err := f.source.GetWorkItems(gctx, ref, credential, batch)
			if err != nil {
				return fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
			}
			results[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]domain.WorkItem, 0, len(ids))
	for _, got := range results {
		items = append(items, got...)
	}
	return items, nil
}

// Batches splits ids into contiguous chunks of at most size, preserving order.
func Batches(ids []int, size int) [][]int {
	if size <= 0 {
		size = ado.MaxBatchSize
	}
	batches := make([][]int, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
