package dashboard

import (
	"context"
	"fmt"

	"github.com/drewdunne/mrboard/internal/provider"
	"golang.org/x/sync/errgroup"
)

// ApprovalFetcher fetches the approval state of one merge request.
type ApprovalFetcher interface {
	Approvals(ctx context.Context, mr provider.MergeRequest) (*provider.ApprovalInfo, error)
}

// Entry pairs a merge request with its approvals and score.
type Entry struct {
	MergeRequest provider.MergeRequest
	Approvals    provider.ApprovalInfo
	Score        int
}

// Enrich fetches approvals for every MR in the set, at most limit at a time.
// Any single failure fails the whole call; no partial result is returned.
func Enrich(ctx context.Context, fetcher ApprovalFetcher, set Set, limit int) ([]Entry, error) {
	ids := set.IDs()
	entries := make([]Entry, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, id := range ids {
		entries[i].MergeRequest = set[id]
		g.Go(func() error {
			mr := entries[i].MergeRequest
			info, err := fetcher.Approvals(ctx, mr)
			if err != nil {
				return fmt.Errorf("approvals for %s: %w", mr.Reference, err)
			}
			if info == nil {
				return fmt.Errorf("approvals for %s: empty response", mr.Reference)
			}
			entries[i].Approvals = *info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
