package dashboard

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/drewdunne/mrboard/internal/logging"
	"github.com/drewdunne/mrboard/internal/provider"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel API calls within a tick.
const DefaultConcurrency = 4

// Board computes the prioritized merge request list for one viewer.
// It keeps no state between refreshes.
type Board struct {
	provider    provider.Provider
	sources     *Sources
	scorer      Scorer
	concurrency int
}

// Option configures a Board.
type Option func(*Board)

// WithReviewMaxAge sets the review request age window in days.
func WithReviewMaxAge(days int) Option {
	return func(b *Board) {
		b.sources.reviewMaxAge = days
	}
}

// WithClock replaces the wall clock used by the review age filter.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.sources.now = now
	}
}

// WithPolicy sets the scoring policy.
func WithPolicy(p Policy) Option {
	return func(b *Board) {
		b.scorer.Policy = p
	}
}

// WithConcurrency bounds parallel API calls. 1 runs everything sequentially.
func WithConcurrency(n int) Option {
	return func(b *Board) {
		b.concurrency = n
	}
}

// NewBoard creates a Board backed by the given provider.
func NewBoard(p provider.Provider, opts ...Option) *Board {
	b := &Board{
		provider:    p,
		sources:     NewSources(p),
		scorer:      Scorer{Policy: DefaultPolicy()},
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the scoring policy in use.
func (b *Board) Policy() Policy {
	return b.scorer.Policy
}

// Refresh runs one full tick: query all sources, merge them, fetch
// approvals, score and sort. Any fetch error aborts the whole refresh.
func (b *Board) Refresh(ctx context.Context, viewer provider.User) ([]Entry, error) {
	var branchDerived, reviewing, assigned, authored Set

	g, gctx := errgroup.WithContext(ctx)
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}
	g.Go(func() (err error) {
		branchDerived, err = b.sources.BranchDerived(gctx, viewer)
		return err
	})
	g.Go(func() (err error) {
		reviewing, err = b.sources.Reviewing(gctx, viewer)
		return err
	})
	g.Go(func() (err error) {
		assigned, err = b.sources.Assigned(gctx, viewer)
		return err
	})
	g.Go(func() (err error) {
		authored, err = b.sources.Authored(gctx, viewer)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Aggregate(branchDerived, reviewing, assigned, authored)
	log.Printf("[Board] Tick %s %s: branch=%d reviewing=%d assigned=%d authored=%d merged=%d",
		logging.TickID(ctx), viewer.Username, len(branchDerived), len(reviewing), len(assigned), len(authored), len(merged))

	entries, err := Enrich(ctx, b.provider, merged, b.concurrency)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Score = b.scorer.Score(&entries[i].MergeRequest, &entries[i].Approvals, viewer)
	}
	SortEntries(entries)

	return entries, nil
}

// SortEntries orders by descending score. Equal scores fall back to
// reference ascending, then id, so output is reproducible.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.MergeRequest.Reference != b.MergeRequest.Reference {
			return a.MergeRequest.Reference < b.MergeRequest.Reference
		}
		return a.MergeRequest.ID < b.MergeRequest.ID
	})
}
