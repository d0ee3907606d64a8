package provider

import "time"

// User is an account on the code-hosting platform.
type User struct {
	ID       int
	Name     string
	Username string
}

// Milestone is the milestone an MR is attached to.
type Milestone struct {
	Title string
}

// PushEvent is a recent push by the viewer.
type PushEvent struct {
	ProjectID   int
	ProjectPath string // owner/repo, only set by providers that address projects by path
	Branch      string // empty when the push carried no branch reference
}

// MergeRequest represents a merge request/pull request.
type MergeRequest struct {
	ID           int // global id, used for deduplication
	IID          int // MR IID (GitLab) or PR number (GitHub)
	ProjectID    int
	ProjectPath  string
	Title        string
	Milestone    *Milestone
	Draft        bool
	HasConflicts bool
	Reference    string // e.g. group/project!42
	TargetBranch string
	WebURL       string
	UpdatedAt    time.Time
	Author       User
	Assignees    []User
	Reviewers    []User
}

// IsAssignee reports whether u is one of the MR's assignees.
func (mr *MergeRequest) IsAssignee(u User) bool {
	return containsUser(mr.Assignees, u)
}

// IsReviewer reports whether u is a requested reviewer.
func (mr *MergeRequest) IsReviewer(u User) bool {
	return containsUser(mr.Reviewers, u)
}

// IsAuthor reports whether u authored the MR.
func (mr *MergeRequest) IsAuthor(u User) bool {
	return mr.Author.ID == u.ID
}

// Approver is a user who approved an MR.
type Approver struct {
	User User
}

// ApprovalInfo holds the approval state of one MR.
type ApprovalInfo struct {
	ApprovalsLeft int
	ApprovedBy    []Approver
}

// HasApproved reports whether u already approved the MR.
func (a *ApprovalInfo) HasApproved(u User) bool {
	for _, ap := range a.ApprovedBy {
		if ap.User.ID == u.ID {
			return true
		}
	}
	return false
}

func containsUser(users []User, u User) bool {
	for _, x := range users {
		if x.ID == u.ID {
			return true
		}
	}
	return false
}
