package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/drewdunne/mrboard/internal/dashboard"
	"github.com/drewdunne/mrboard/internal/provider"
	"golang.org/x/term"
)

// clearScreen erases the display and homes the cursor.
const clearScreen = "\x1b[2J\x1b[H"

// Options controls table output.
type Options struct {
	ReferenceWidth int
	AuthorWidth    int
	AssigneeWidth  int
	TitleWidth     int

	Color      bool
	Hyperlinks bool
	// Clear erases the screen before each table.
	Clear bool

	// TerminalWidth reports the current width; 0 means unknown.
	TerminalWidth func() int
}

// DefaultOptions returns plain output with the built-in column widths.
func DefaultOptions() Options {
	return Options{
		ReferenceWidth: DefaultReferenceWidth,
		AuthorWidth:    DefaultUserWidth,
		AssigneeWidth:  DefaultUserWidth,
		TitleWidth:     DefaultTitleWidth,
		TerminalWidth:  func() int { return 0 },
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of f, or 0 when f is not a terminal.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink to url.
func Hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

// Renderer draws the prioritized merge request table.
type Renderer struct {
	out     io.Writer
	opts    Options
	policy  dashboard.Policy
	palette palette
}

// New creates a Renderer writing to out.
func New(out io.Writer, policy dashboard.Policy, opts Options) *Renderer {
	if opts.TerminalWidth == nil {
		opts.TerminalWidth = func() int { return 0 }
	}
	return &Renderer{
		out:     out,
		opts:    opts,
		policy:  policy,
		palette: newPalette(opts.Color),
	}
}

// Render writes the table for already sorted entries in a single write.
func (r *Renderer) Render(entries []dashboard.Entry, viewer provider.User) error {
	layout := ComputeLayout(entries, r.opts.TerminalWidth(), r.opts)

	var b strings.Builder
	if r.opts.Clear {
		b.WriteString(clearScreen)
	}
	for i := range entries {
		b.WriteString(r.Row(&entries[i], viewer, layout))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}

// Row formats one entry: reference, title, author, assignees.
func (r *Renderer) Row(e *dashboard.Entry, viewer provider.User, l Layout) string {
	mr := &e.MergeRequest

	reference := Cell(l.Reference, mr.Reference)
	if r.opts.Hyperlinks && mr.WebURL != "" {
		reference = Hyperlink(mr.WebURL, reference)
	}

	author := r.palette.plain
	if mr.IsAuthor(viewer) {
		author = r.palette.self
	}

	var assignees strings.Builder
	for _, a := range mr.Assignees {
		assignees.WriteString(a.Username)
		assignees.WriteByte(' ')
	}

	return strings.Join([]string{
		r.palette.reference.Sprint(reference),
		r.palette.titles[TitleStyle(e, viewer, r.policy)].Sprint(Cell(l.Title, mr.Title)),
		author.Sprint(Cell(l.Author, mr.Author.Username)),
		r.palette.assignees.Sprint(Cell(l.Assignees, assignees.String())),
	}, " ")
}
