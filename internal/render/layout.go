package render

import (
	"strings"
	"unicode/utf8"

	"github.com/drewdunne/mrboard/internal/dashboard"
)

const (
	DefaultReferenceWidth = 25
	DefaultUserWidth      = 15
	DefaultTitleWidth     = 40

	ellipsis = "..."
)

// Layout holds column widths for one table.
type Layout struct {
	Reference int
	Title     int
	Author    int
	Assignees int
}

// ComputeLayout sizes the columns. The reference column fits the longest
// reference; the title takes whatever the terminal has left, or the longest
// title when the width is unknown (termWidth <= 0) or too small.
func ComputeLayout(entries []dashboard.Entry, termWidth int, opts Options) Layout {
	l := Layout{
		Reference: opts.ReferenceWidth,
		Author:    opts.AuthorWidth,
		Assignees: opts.AssigneeWidth,
	}

	if w := maxWidth(entries, func(e dashboard.Entry) string { return e.MergeRequest.Reference }); w > 0 {
		l.Reference = w
	}

	// three single-space separators between four columns
	fixed := l.Reference + l.Author + l.Assignees + 3
	if termWidth > fixed {
		l.Title = termWidth - fixed
		return l
	}

	l.Title = opts.TitleWidth
	if w := maxWidth(entries, func(e dashboard.Entry) string { return e.MergeRequest.Title }); w > 0 {
		l.Title = w
	}
	return l
}

func maxWidth(entries []dashboard.Entry, field func(dashboard.Entry) string) int {
	max := 0
	for _, e := range entries {
		if n := utf8.RuneCountInString(field(e)); n > max {
			max = n
		}
	}
	return max
}

// Cell fits body into exactly width characters: longer text is cut to
// width-3 characters plus "...", shorter text is padded with spaces.
func Cell(width int, body string) string {
	if width <= 0 {
		return ""
	}

	n := utf8.RuneCountInString(body)
	if n <= width {
		return body + strings.Repeat(" ", width-n)
	}
	if width <= len(ellipsis) {
		return ellipsis[:width]
	}

	runes := []rune(body)
	return string(runes[:width-len(ellipsis)]) + ellipsis
}
