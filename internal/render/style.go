package render

import (
	"github.com/drewdunne/mrboard/internal/dashboard"
	"github.com/drewdunne/mrboard/internal/provider"
	"github.com/fatih/color"
)

// Style is the highlight class of a row's title.
type Style int

const (
	StyleDefault Style = iota
	// StyleUrgent: the viewer must act and the MR targets a main-line branch.
	StyleUrgent
	// StyleAction: the viewer must act on some other branch.
	StyleAction
	// StyleResolved: no approvals left, or the viewer already approved.
	StyleResolved
	StyleDraft
)

// TitleStyle picks the title highlight for an entry.
func TitleStyle(e *dashboard.Entry, viewer provider.User, policy dashboard.Policy) Style {
	mr := &e.MergeRequest
	switch {
	case dashboard.NeedsViewerAction(mr, viewer):
		if policy.TargetsMainBranch(mr) {
			return StyleUrgent
		}
		return StyleAction
	case e.Approvals.ApprovalsLeft < 1 || e.Approvals.HasApproved(viewer):
		return StyleResolved
	case mr.Draft:
		return StyleDraft
	default:
		return StyleDefault
	}
}

type palette struct {
	titles    map[Style]*color.Color
	reference *color.Color
	self      *color.Color
	plain     *color.Color
	assignees *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		titles: map[Style]*color.Color{
			StyleDefault:  color.New(color.FgWhite),
			StyleUrgent:   color.New(color.FgRed),
			StyleAction:   color.New(color.FgYellow),
			StyleResolved: color.New(color.FgGreen),
			StyleDraft:    color.New(color.FgHiBlack),
		},
		reference: color.New(color.FgBlue),
		self:      color.New(color.FgGreen),
		plain:     color.New(color.FgWhite),
		assignees: color.New(color.FgRed),
	}

	all := []*color.Color{p.reference, p.self, p.plain, p.assignees}
	for _, c := range p.titles {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
