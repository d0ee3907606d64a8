package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/drewdunne/mrboard/internal/provider"
)

// DefaultReviewMaxAgeDays drops review requests idle for longer than this.
const DefaultReviewMaxAgeDays = 14

// Sources runs the four relevance queries against a provider.
type Sources struct {
	provider     provider.Provider
	reviewMaxAge int
	now          func() time.Time
}

// NewSources creates Sources with the default review age and wall clock.
func NewSources(p provider.Provider) *Sources {
	return &Sources{
		provider:     p,
		reviewMaxAge: DefaultReviewMaxAgeDays,
		now:          time.Now,
	}
}

// Reviewing returns open MRs where the viewer is a requested reviewer,
// updated within the review age window.
func (s *Sources) Reviewing(ctx context.Context, viewer provider.User) (Set, error) {
	mrs, err := s.provider.ReviewRequests(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("reviewing: %w", err)
	}

	now := s.now()
	set := make(Set, len(mrs))
	for _, mr := range mrs {
		if withinDays(mr.UpdatedAt, now, s.reviewMaxAge) {
			set[mr.ID] = mr
		}
	}
	return set, nil
}

// Assigned returns open MRs assigned to the viewer.
func (s *Sources) Assigned(ctx context.Context, viewer provider.User) (Set, error) {
	mrs, err := s.provider.AssignedTo(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("assigned: %w", err)
	}
	return NewSet(mrs), nil
}

// Authored returns open MRs authored by the viewer.
func (s *Sources) Authored(ctx context.Context, viewer provider.User) (Set, error) {
	mrs, err := s.provider.AuthoredBy(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("authored: %w", err)
	}
	return NewSet(mrs), nil
}

// BranchDerived returns open MRs from branches the viewer recently pushed to.
// Pushes without a branch are skipped; each project/branch pair is queried once.
func (s *Sources) BranchDerived(ctx context.Context, viewer provider.User) (Set, error) {
	pushes, err := s.provider.RecentPushes(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("recent pushes: %w", err)
	}

	set := make(Set)
	queried := make(map[provider.PushEvent]bool)
	for _, push := range pushes {
		if push.Branch == "" || queried[push] {
			continue
		}
		queried[push] = true

		mrs, err := s.provider.MergeRequestsForBranch(ctx, push)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", push.Branch, err)
		}
		for _, mr := range mrs {
			set[mr.ID] = mr
		}
	}
	return set, nil
}

// withinDays reports whether updated is at most days whole days before now.
// Partial days are truncated, so 14 days and 23 hours counts as 14.
func withinDays(updated, now time.Time, days int) bool {
	age := now.Sub(updated)
	return int(age/(24*time.Hour)) <= days
}
