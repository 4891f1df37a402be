package errs

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	kindStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pointerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// colorEnabled gates lipgloss styling on stderr being an interactive
// terminal, so piped/captured output stays plain (no ANSI codes to scrape).
func colorEnabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Render formats a Record per §7: "each error prints its kind, one-line
// context, and (when available) file:line plus a colored pointer. No stack
// traces."
func Render(r Record) string {
	kind := string(r.Kind)
	ctx := r.String()
	loc := ""
	if r.File != "" {
		if r.Line > 0 {
			loc = fmt.Sprintf("%s:%d", r.File, r.Line)
		} else {
			loc = r.File
		}
	}

	if !colorEnabled() {
		var b strings.Builder
		fmt.Fprintf(&b, "%s: %s", kind, ctx)
		if loc != "" {
			fmt.Fprintf(&b, "\n  --> %s", loc)
		}
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", kindStyle.Render(kind), contextStyle.Render(ctx))
	if loc != "" {
		fmt.Fprintf(&b, "\n  %s %s", pointerStyle.Render("-->"), loc)
	}
	return b.String()
}

// RenderAll renders every record in a Handler, one block per record.
func RenderAll(h *Handler) string {
	var blocks []string
	for _, r := range h.Records() {
		blocks = append(blocks, Render(r))
	}
	return strings.Join(blocks, "\n")
}
