package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/drewdunne/mrboard/internal/provider"
)

// fakeProvider serves canned data and records calls.
type fakeProvider struct {
	mu sync.Mutex

	reviewing []provider.MergeRequest
	assigned  []provider.MergeRequest
	authored  []provider.MergeRequest
	pushes    []provider.PushEvent
	branches  map[string][]provider.MergeRequest // keyed by "projectID/branch"
	approvals map[int]provider.ApprovalInfo      // keyed by MR id

	errs  map[string]error // keyed by method name
	calls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		branches:  make(map[string][]provider.MergeRequest),
		approvals: make(map[int]provider.ApprovalInfo),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeProvider) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeProvider) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FindUser(ctx context.Context, username string) (*provider.User, error) {
	if err := f.record("FindUser"); err != nil {
		return nil, err
	}
	return &provider.User{ID: 1, Username: username}, nil
}

func (f *fakeProvider) ReviewRequests(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	if err := f.record("ReviewRequests"); err != nil {
		return nil, err
	}
	return f.reviewing, nil
}

func (f *fakeProvider) AssignedTo(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	if err := f.record("AssignedTo"); err != nil {
		return nil, err
	}
	return f.assigned, nil
}

func (f *fakeProvider) AuthoredBy(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	if err := f.record("AuthoredBy"); err != nil {
		return nil, err
	}
	return f.authored, nil
}

func (f *fakeProvider) RecentPushes(ctx context.Context, viewer provider.User) ([]provider.PushEvent, error) {
	if err := f.record("RecentPushes"); err != nil {
		return nil, err
	}
	return f.pushes, nil
}

func (f *fakeProvider) MergeRequestsForBranch(ctx context.Context, push provider.PushEvent) ([]provider.MergeRequest, error) {
	if err := f.record("MergeRequestsForBranch"); err != nil {
		return nil, err
	}
	return f.branches[fmt.Sprintf("%d/%s", push.ProjectID, push.Branch)], nil
}

func (f *fakeProvider) Approvals(ctx context.Context, mr provider.MergeRequest) (*provider.ApprovalInfo, error) {
	if err := f.record("Approvals"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.approvals[mr.ID]
	if !ok {
		info = provider.ApprovalInfo{ApprovalsLeft: 1}
	}
	return &info, nil
}

func mr(id int, ref string) provider.MergeRequest {
	return provider.MergeRequest{
		ID:           id,
		IID:          id % 100,
		ProjectID:    7,
		Reference:    ref,
		Title:        "MR " + ref,
		TargetBranch: "feature",
		Author:       provider.User{ID: 99, Username: "someone"},
	}
}
