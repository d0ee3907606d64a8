package provider

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no account matches the requested username.
var ErrUserNotFound = errors.New("no user found with that name")

// Provider defines the interface for git provider operations.
type Provider interface {
	// Name returns the provider name (github, gitlab).
	Name() string

	// FindUser looks up an account by username.
	FindUser(ctx context.Context, username string) (*User, error)

	// ReviewRequests lists open merge requests the viewer is asked to review.
	ReviewRequests(ctx context.Context, viewer User) ([]MergeRequest, error)

	// AssignedTo lists open merge requests assigned to the viewer.
	AssignedTo(ctx context.Context, viewer User) ([]MergeRequest, error)

	// AuthoredBy lists open merge requests authored by the viewer.
	AuthoredBy(ctx context.Context, viewer User) ([]MergeRequest, error)

	// RecentPushes lists the viewer's recent push events.
	RecentPushes(ctx context.Context, viewer User) ([]PushEvent, error)

	// MergeRequestsForBranch lists open merge requests whose source branch
	// is the pushed branch, within the push's project.
	MergeRequestsForBranch(ctx context.Context, push PushEvent) ([]MergeRequest, error)

	// Approvals fetches the approval state of a merge request.
	Approvals(ctx context.Context, mr MergeRequest) (*ApprovalInfo, error)
}
