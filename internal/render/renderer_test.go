package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/drewdunne/mrboard/internal/dashboard"
	"github.com/drewdunne/mrboard/internal/provider"
)

var (
	viewer = provider.User{ID: 1, Username: "me"}
	other  = provider.User{ID: 2, Username: "other"}
)

func TestTitleStyle(t *testing.T) {
	policy := dashboard.DefaultPolicy()

	tests := []struct {
		name  string
		entry dashboard.Entry
		want  Style
	}{
		{
			name: "assigned ready main-line MR",
			entry: dashboard.Entry{
				MergeRequest: provider.MergeRequest{TargetBranch: "main", Assignees: []provider.User{viewer}},
				Approvals:    provider.ApprovalInfo{ApprovalsLeft: 1},
			},
			want: StyleUrgent,
		},
		{
			name: "assigned ready MR on another branch",
			entry: dashboard.Entry{
				MergeRequest: provider.MergeRequest{TargetBranch: "release", Assignees: []provider.User{viewer}},
				Approvals:    provider.ApprovalInfo{ApprovalsLeft: 0},
			},
			want: StyleAction,
		},
		{
			name: "no approvals left",
			entry: dashboard.Entry{
				MergeRequest: provider.MergeRequest{TargetBranch: "main", Assignees: []provider.User{other}},
				Approvals:    provider.ApprovalInfo{ApprovalsLeft: 0},
			},
			want: StyleResolved,
		},
		{
			name: "viewer already approved",
			entry: dashboard.Entry{
				MergeRequest: provider.MergeRequest{Draft: true},
				Approvals:    provider.ApprovalInfo{ApprovalsLeft: 2, ApprovedBy: []provider.Approver{{User: viewer}}},
			},
			want: StyleResolved,
		},
		{
			name: "draft assigned to viewer",
			entry: dashboard.Entry{
				MergeRequest: provider.MergeRequest{Draft: true, Assignees: []provider.User{viewer}},
				Approvals:    provider.ApprovalInfo{ApprovalsLeft: 1},
			},
			want: StyleDraft,
		},
		{
			name: "someone else's MR",
			entry: dashboard.Entry{
				MergeRequest: provider.MergeRequest{TargetBranch: "main", Assignees: []provider.User{other}},
				Approvals:    provider.ApprovalInfo{ApprovalsLeft: 1},
			},
			want: StyleDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleStyle(&tt.entry, viewer, policy); got != tt.want {
				t.Errorf("TitleStyle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func sampleEntries() []dashboard.Entry {
	return []dashboard.Entry{
		{
			MergeRequest: provider.MergeRequest{
				Reference:    "g/p!1",
				Title:        "Fix the thing",
				TargetBranch: "main",
				WebURL:       "https://gitlab.com/g/p/-/merge_requests/1",
				Author:       viewer,
				Assignees:    []provider.User{viewer, other},
			},
			Approvals: provider.ApprovalInfo{ApprovalsLeft: 1},
			Score:     8,
		},
		{
			MergeRequest: provider.MergeRequest{
				Reference: "g/q!22",
				Title:     "Add a feature with a very long title that will not fit",
				Author:    other,
			},
			Approvals: provider.ApprovalInfo{ApprovalsLeft: 1},
			Score:     0,
		},
	}
}

func TestRenderer_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.TitleWidth = 20
	opts.TerminalWidth = func() int { return 6 + 20 + 15 + 15 + 3 }

	r := New(&buf, dashboard.DefaultPolicy(), opts)
	if err := r.Render(sampleEntries(), viewer); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "g/p!1  Fix the thing        me              me other       \n" +
		"g/q!22 Add a feature wit... other                          \n"
	if got := buf.String(); got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderer_ClearAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Clear = true

	if err := New(&buf, dashboard.DefaultPolicy(), opts).Render(nil, viewer); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := buf.String(); got != clearScreen {
		t.Errorf("Render(nil) = %q, want only the clear sequence", got)
	}
}

func TestRenderer_Hyperlinks(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Hyperlinks = true

	if err := New(&buf, dashboard.DefaultPolicy(), opts).Render(sampleEntries()[:1], viewer); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	link := Hyperlink("https://gitlab.com/g/p/-/merge_requests/1", "g/p!1")
	if !strings.HasPrefix(buf.String(), link) {
		t.Errorf("Render() = %q, want prefix %q", buf.String(), link)
	}
}

func TestRenderer_Colors(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Color = true

	if err := New(&buf, dashboard.DefaultPolicy(), opts).Render(sampleEntries()[:1], viewer); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, code := range []string{"\x1b[34m", "\x1b[31m", "\x1b[32m"} {
		if !strings.Contains(out, code) {
			t.Errorf("Render() = %q, missing escape %q", out, code)
		}
	}
}

func TestHyperlink(t *testing.T) {
	got := Hyperlink("https://example.com", "text")
	want := "\x1b]8;;https://example.com\x1b\\text\x1b]8;;\x1b\\"
	if got != want {
		t.Errorf("Hyperlink() = %q, want %q", got, want)
	}
}
