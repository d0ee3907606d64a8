package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/drewdunne/mrboard/internal/provider"
	"github.com/xanzy/go-gitlab"
)

const perPage = 100

// GitLabProvider implements provider.Provider for GitLab.
type GitLabProvider struct {
	client *gitlab.Client
}

type options struct {
	baseURL    string
	bearer     bool
	httpClient *http.Client
}

// Option configures the GitLab provider.
type Option func(*options)

// WithBaseURL sets a custom base URL (self-managed instances, tests).
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSuffix(baseURL, "/") + "/api/v4"
	}
}

// WithBearerAuth sends the token as "Authorization: Bearer" instead of PRIVATE-TOKEN.
func WithBearerAuth() Option {
	return func(o *options) {
		o.bearer = true
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// New creates a new GitLab provider.
func New(token string, opts ...Option) (*GitLabProvider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []gitlab.ClientOptionFunc
	if o.baseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, gitlab.WithHTTPClient(o.httpClient))
	}

	newClient := gitlab.NewClient
	if o.bearer {
		newClient = gitlab.NewOAuthClient
	}
	client, err := newClient(token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &GitLabProvider{client: client}, nil
}

// Name returns the provider name.
func (p *GitLabProvider) Name() string {
	return "gitlab"
}

// FindUser looks up a user by username.
func (p *GitLabProvider) FindUser(ctx context.Context, username string) (*provider.User, error) {
	users, _, err := p.client.Users.ListUsers(&gitlab.ListUsersOptions{
		Username: gitlab.Ptr(username),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: %s", provider.ErrUserNotFound, username)
	}

	u := users[0]
	return &provider.User{ID: u.ID, Name: u.Name, Username: u.Username}, nil
}

// ReviewRequests lists open merge requests where the viewer is a reviewer.
func (p *GitLabProvider) ReviewRequests(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	return p.listMergeRequests(ctx, &gitlab.ListMergeRequestsOptions{
		ReviewerID: gitlab.ReviewerID(viewer.ID),
	})
}

// AssignedTo lists open merge requests assigned to the viewer.
func (p *GitLabProvider) AssignedTo(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	return p.listMergeRequests(ctx, &gitlab.ListMergeRequestsOptions{
		AssigneeID: gitlab.AssigneeID(viewer.ID),
	})
}

// AuthoredBy lists open merge requests authored by the viewer.
func (p *GitLabProvider) AuthoredBy(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	return p.listMergeRequests(ctx, &gitlab.ListMergeRequestsOptions{
		AuthorID: gitlab.Ptr(viewer.ID),
	})
}

func (p *GitLabProvider) listMergeRequests(ctx context.Context, opt *gitlab.ListMergeRequestsOptions) ([]provider.MergeRequest, error) {
	opt.ListOptions = gitlab.ListOptions{PerPage: perPage}
	opt.State = gitlab.Ptr("opened")
	opt.Scope = gitlab.Ptr("all")

	mrs, _, err := p.client.MergeRequests.ListMergeRequests(opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge requests: %w", err)
	}
	return convertMergeRequests(mrs), nil
}

// RecentPushes lists the viewer's recent push events.
func (p *GitLabProvider) RecentPushes(ctx context.Context, viewer provider.User) ([]provider.PushEvent, error) {
	events, _, err := p.client.Users.ListUserContributionEvents(viewer.ID, &gitlab.ListContributionEventsOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage},
		Action:      gitlab.Ptr(gitlab.EventTypeValue("pushed")),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing push events: %w", err)
	}

	result := make([]provider.PushEvent, len(events))
	for i, e := range events {
		result[i] = provider.PushEvent{
			ProjectID: e.ProjectID,
			Branch:    strings.TrimPrefix(e.PushData.Ref, "refs/heads/"),
		}
	}
	return result, nil
}

// MergeRequestsForBranch lists open merge requests from the pushed branch.
func (p *GitLabProvider) MergeRequestsForBranch(ctx context.Context, push provider.PushEvent) ([]provider.MergeRequest, error) {
	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(push.ProjectID, &gitlab.ListProjectMergeRequestsOptions{
		ListOptions:  gitlab.ListOptions{PerPage: perPage},
		State:        gitlab.Ptr("opened"),
		SourceBranch: gitlab.Ptr(push.Branch),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge requests for branch %s: %w", push.Branch, err)
	}
	return convertMergeRequests(mrs), nil
}

// Approvals fetches approval state by project id and IID.
func (p *GitLabProvider) Approvals(ctx context.Context, mr provider.MergeRequest) (*provider.ApprovalInfo, error) {
	approvals, _, err := p.client.MergeRequestApprovals.GetConfiguration(mr.ProjectID, mr.IID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching approvals for %s: %w", mr.Reference, err)
	}

	info := &provider.ApprovalInfo{ApprovalsLeft: approvals.ApprovalsLeft}
	for _, a := range approvals.ApprovedBy {
		if a == nil || a.User == nil {
			continue
		}
		info.ApprovedBy = append(info.ApprovedBy, provider.Approver{User: convertUser(a.User)})
	}
	return info, nil
}

func convertMergeRequests(mrs []*gitlab.MergeRequest) []provider.MergeRequest {
	result := make([]provider.MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		if mr == nil {
			continue
		}
		result = append(result, convertMergeRequest(mr))
	}
	return result
}

func convertMergeRequest(mr *gitlab.MergeRequest) provider.MergeRequest {
	result := provider.MergeRequest{
		ID:           mr.ID,
		IID:          mr.IID,
		ProjectID:    mr.ProjectID,
		Title:        mr.Title,
		Draft:        mr.Draft,
		HasConflicts: mr.HasConflicts,
		TargetBranch: mr.TargetBranch,
		WebURL:       mr.WebURL,
		Author:       convertUser(mr.Author),
	}

	if mr.References != nil {
		result.Reference = mr.References.Full
	}
	if mr.Milestone != nil {
		result.Milestone = &provider.Milestone{Title: mr.Milestone.Title}
	}
	if mr.UpdatedAt != nil {
		result.UpdatedAt = *mr.UpdatedAt
	}
	for _, a := range mr.Assignees {
		if a != nil {
			result.Assignees = append(result.Assignees, convertUser(a))
		}
	}
	for _, r := range mr.Reviewers {
		if r != nil {
			result.Reviewers = append(result.Reviewers, convertUser(r))
		}
	}

	return result
}

func convertUser(u *gitlab.BasicUser) provider.User {
	if u == nil {
		return provider.User{}
	}
	return provider.User{ID: u.ID, Name: u.Name, Username: u.Username}
}
