package battle

import (
	"fmt"
	"strings"
)

// Transcript is the append-only narration of a battle.
type Transcript struct {
	lines []string
}

// Addf appends one formatted line.
func (t *Transcript) Addf(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the narration lines in order.
func (t *Transcript) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len returns the number of lines.
func (t *Transcript) Len() int { return len(t.lines) }

// String joins the lines with newlines.
func (t *Transcript) String() string {
	return strings.Join(t.lines, "\n")
}
