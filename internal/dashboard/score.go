package dashboard

import "github.com/drewdunne/mrboard/internal/provider"

// DefaultBotUsername is the automated merge bot account.
const DefaultBotUsername = "nomadic-margebot"

// Policy holds the account and branch names the scoring rules refer to.
type Policy struct {
	BotUsername  string
	MainBranches []string
}

// DefaultPolicy returns the built-in scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		BotUsername:  DefaultBotUsername,
		MainBranches: []string{"main", "master"},
	}
}

// TargetsMainBranch reports whether the MR merges into a main-line branch.
func (p Policy) TargetsMainBranch(mr *provider.MergeRequest) bool {
	for _, b := range p.MainBranches {
		if mr.TargetBranch == b {
			return true
		}
	}
	return false
}

// BotOnly reports whether every assignee is the merge bot.
// An MR with no assignees counts as bot only.
func (p Policy) BotOnly(mr *provider.MergeRequest) bool {
	for _, a := range mr.Assignees {
		if a.Username != p.BotUsername {
			return false
		}
	}
	return true
}

// NeedsViewerAction reports whether the viewer is assigned to a ready MR.
func NeedsViewerAction(mr *provider.MergeRequest, viewer provider.User) bool {
	return mr.IsAssignee(viewer) && !mr.Draft
}

// Input is what a scoring rule looks at.
type Input struct {
	MR        *provider.MergeRequest
	Approvals *provider.ApprovalInfo
	Viewer    provider.User
	Policy    Policy
}

// Rule adds Delta to the score when Applies holds.
type Rule struct {
	Name    string
	Delta   int
	Applies func(in Input) bool
}

// Rules is the scoring table. Every rule is evaluated; deltas are summed.
var Rules = []Rule{
	{"assigned and ready", +5, func(in Input) bool { return NeedsViewerAction(in.MR, in.Viewer) }},
	{"targets main branch", +2, func(in Input) bool { return in.Policy.TargetsMainBranch(in.MR) }},
	{"authored", +1, func(in Input) bool { return in.MR.IsAuthor(in.Viewer) }},
	{"review requested", +1, func(in Input) bool { return in.MR.IsReviewer(in.Viewer) }},
	{"has conflicts", -1, func(in Input) bool { return in.MR.HasConflicts }},
	{"already approved", -1, func(in Input) bool { return in.Approvals.HasApproved(in.Viewer) }},
	{"no approvals left", -2, func(in Input) bool { return in.Approvals.ApprovalsLeft < 1 }},
	{"bot only", -5, func(in Input) bool { return in.Policy.BotOnly(in.MR) }},
}

// Scorer ranks merge requests by how actionable they are for the viewer.
type Scorer struct {
	Policy Policy
}

// Score sums the deltas of all applicable rules. Higher is more actionable.
func (s Scorer) Score(mr *provider.MergeRequest, approvals *provider.ApprovalInfo, viewer provider.User) int {
	in := Input{MR: mr, Approvals: approvals, Viewer: viewer, Policy: s.Policy}

	score := 0
	for _, r := range Rules {
		if r.Applies(in) {
			score += r.Delta
		}
	}
	return score
}

// Score ranks with the default policy.
func Score(mr *provider.MergeRequest, approvals *provider.ApprovalInfo, viewer provider.User) int {
	return Scorer{Policy: DefaultPolicy()}.Score(mr, approvals, viewer)
}
