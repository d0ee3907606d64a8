package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/drewdunne/mrboard/internal/provider"
	"github.com/google/go-github/v60/github"
)

const perPage = 100

// GitHubProvider implements provider.Provider for GitHub.
// Pull requests stand in for merge requests.
type GitHubProvider struct {
	client            *github.Client
	httpClient        *http.Client
	requiredApprovals int
}

// Option configures the GitHub provider.
type Option func(*GitHubProvider)

// WithBaseURL sets a custom base URL (GitHub Enterprise, tests).
func WithBaseURL(url string) Option {
	return func(p *GitHubProvider) {
		p.client.BaseURL, _ = p.client.BaseURL.Parse(strings.TrimSuffix(url, "/") + "/")
	}
}

// WithTimeout bounds every API request.
func WithTimeout(d time.Duration) Option {
	return func(p *GitHubProvider) {
		p.httpClient.Timeout = d
	}
}

// WithRequiredApprovals sets how many approving reviews a pull request needs.
// GitHub does not report this per pull request.
func WithRequiredApprovals(n int) Option {
	return func(p *GitHubProvider) {
		p.requiredApprovals = n
	}
}

// New creates a new GitHub provider.
func New(token string, opts ...Option) *GitHubProvider {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}

	p := &GitHubProvider{
		client:            github.NewClient(httpClient),
		httpClient:        httpClient,
		requiredApprovals: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// Name returns the provider name.
func (p *GitHubProvider) Name() string {
	return "github"
}

// FindUser looks up a user by login.
func (p *GitHubProvider) FindUser(ctx context.Context, username string) (*provider.User, error) {
	u, resp, err := p.client.Users.Get(ctx, username)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", provider.ErrUserNotFound, username)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	return &provider.User{
		ID:       int(u.GetID()),
		Name:     u.GetName(),
		Username: u.GetLogin(),
	}, nil
}

// ReviewRequests lists open pull requests awaiting the viewer's review.
func (p *GitHubProvider) ReviewRequests(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	return p.search(ctx, "review-requested", viewer)
}

// AssignedTo lists open pull requests assigned to the viewer.
func (p *GitHubProvider) AssignedTo(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	return p.search(ctx, "assignee", viewer)
}

// AuthoredBy lists open pull requests opened by the viewer.
func (p *GitHubProvider) AuthoredBy(ctx context.Context, viewer provider.User) ([]provider.MergeRequest, error) {
	return p.search(ctx, "author", viewer)
}

// search finds pull requests via the issue search API, then fetches each
// one since search hits lack the base branch, draft and conflict state.
func (p *GitHubProvider) search(ctx context.Context, qualifier string, viewer provider.User) ([]provider.MergeRequest, error) {
	query := fmt.Sprintf("is:pr is:open %s:%s", qualifier, viewer.Username)
	result, _, err := p.client.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("searching pull requests (%s): %w", qualifier, err)
	}

	mrs := make([]provider.MergeRequest, 0, len(result.Issues))
	for _, issue := range result.Issues {
		owner, repo, err := splitRepositoryURL(issue.GetRepositoryURL())
		if err != nil {
			return nil, err
		}
		mr, err := p.getPullRequest(ctx, owner, repo, issue.GetNumber())
		if err != nil {
			return nil, err
		}
		mrs = append(mrs, mr)
	}
	return mrs, nil
}

func (p *GitHubProvider) getPullRequest(ctx context.Context, owner, repo string, number int) (provider.MergeRequest, error) {
	pr, _, err := p.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return provider.MergeRequest{}, fmt.Errorf("fetching pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return convertPullRequest(pr), nil
}

// RecentPushes lists the viewer's recent push events.
func (p *GitHubProvider) RecentPushes(ctx context.Context, viewer provider.User) ([]provider.PushEvent, error) {
	events, _, err := p.client.Activity.ListEventsPerformedByUser(ctx, viewer.Username, false, &github.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, fmt.Errorf("listing push events: %w", err)
	}

	var result []provider.PushEvent
	for _, e := range events {
		if e.GetType() != "PushEvent" {
			continue
		}
		push := provider.PushEvent{
			ProjectID:   int(e.GetRepo().GetID()),
			ProjectPath: e.GetRepo().GetName(),
		}
		if payload, err := e.ParsePayload(); err == nil {
			if pe, ok := payload.(*github.PushEvent); ok && strings.HasPrefix(pe.GetRef(), "refs/heads/") {
				push.Branch = strings.TrimPrefix(pe.GetRef(), "refs/heads/")
			}
		}
		result = append(result, push)
	}
	return result, nil
}

// MergeRequestsForBranch lists open pull requests whose head is the pushed branch.
func (p *GitHubProvider) MergeRequestsForBranch(ctx context.Context, push provider.PushEvent) ([]provider.MergeRequest, error) {
	owner, repo, ok := strings.Cut(push.ProjectPath, "/")
	if !ok {
		return nil, fmt.Errorf("invalid repository name: %q", push.ProjectPath)
	}

	prs, _, err := p.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + push.Branch,
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for branch %s: %w", push.Branch, err)
	}

	mrs := make([]provider.MergeRequest, 0, len(prs))
	for _, pr := range prs {
		mr, err := p.getPullRequest(ctx, owner, repo, pr.GetNumber())
		if err != nil {
			return nil, err
		}
		mrs = append(mrs, mr)
	}
	return mrs, nil
}

// Approvals derives approval state from the pull request's reviews.
func (p *GitHubProvider) Approvals(ctx context.Context, mr provider.MergeRequest) (*provider.ApprovalInfo, error) {
	owner, repo, ok := strings.Cut(mr.ProjectPath, "/")
	if !ok {
		return nil, fmt.Errorf("invalid repository name: %q", mr.ProjectPath)
	}

	reviews, _, err := p.client.PullRequests.ListReviews(ctx, owner, repo, mr.IID, &github.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %s: %w", mr.Reference, err)
	}

	info := &provider.ApprovalInfo{}
	seen := make(map[int64]bool)
	for _, r := range reviews {
		if r.GetState() != "APPROVED" || seen[r.GetUser().GetID()] {
			continue
		}
		seen[r.GetUser().GetID()] = true
		info.ApprovedBy = append(info.ApprovedBy, provider.Approver{User: convertUser(r.GetUser())})
	}

	info.ApprovalsLeft = p.requiredApprovals - len(info.ApprovedBy)
	if info.ApprovalsLeft < 0 {
		info.ApprovalsLeft = 0
	}
	return info, nil
}

// splitRepositoryURL extracts owner and repo from an API repository URL
// such as https://api.github.com/repos/owner/repo.
func splitRepositoryURL(repoURL string) (string, string, error) {
	_, path, ok := strings.Cut(repoURL, "/repos/")
	if !ok {
		return "", "", fmt.Errorf("invalid repository URL: %q", repoURL)
	}
	owner, repo, ok := strings.Cut(strings.Trim(path, "/"), "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository URL: %q", repoURL)
	}
	return owner, repo, nil
}

func convertPullRequest(pr *github.PullRequest) provider.MergeRequest {
	base := pr.GetBase()
	mr := provider.MergeRequest{
		ID:           int(pr.GetID()),
		IID:          pr.GetNumber(),
		ProjectID:    int(base.GetRepo().GetID()),
		ProjectPath:  base.GetRepo().GetFullName(),
		Title:        pr.GetTitle(),
		Draft:        pr.GetDraft(),
		HasConflicts: pr.GetMergeableState() == "dirty",
		TargetBranch: base.GetRef(),
		WebURL:       pr.GetHTMLURL(),
		UpdatedAt:    pr.GetUpdatedAt().Time,
		Author:       convertUser(pr.GetUser()),
	}
	mr.Reference = fmt.Sprintf("%s#%d", mr.ProjectPath, mr.IID)

	if pr.Milestone != nil {
		mr.Milestone = &provider.Milestone{Title: pr.Milestone.GetTitle()}
	}
	for _, a := range pr.Assignees {
		mr.Assignees = append(mr.Assignees, convertUser(a))
	}
	for _, r := range pr.RequestedReviewers {
		mr.Reviewers = append(mr.Reviewers, convertUser(r))
	}
	return mr
}

func convertUser(u *github.User) provider.User {
	return provider.User{
		ID:       int(u.GetID()),
		Name:     u.GetName(),
		Username: u.GetLogin(),
	}
}
