// Package diff computes line-based unified diffs between current and proposed
// file contents. It is a pure computation layer: no I/O, and identical inputs
// always yield byte-identical output.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// LineKind classifies a single diff line.
type LineKind string

const (
	LineContext LineKind = "context"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// Line is one line of a hunk. Text keeps its trailing newline when the source
// line had one, so hunks can reconstruct content byte-exactly.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous block of diff lines with up to three lines of
// surrounding context. Starts are 1-based line numbers into the old and new
// content respectively.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Result is the outcome of a diff computation: structured hunks plus the
// rendered unified diff text. A Result with no hunks means the contents are
// identical and Unified is empty.
type Result struct {
	Path    string
	Hunks   []Hunk
	Unified string
}

const contextLines = 3

// Compute diffs oldContent against newContent for the given path. Adjacent
// changed lines are grouped into a single hunk rather than split into many
// one-line hunks. An empty oldContent against non-empty newContent yields a
// single all-added hunk, and vice versa for deletion.
func Compute(path, oldContent, newContent string) Result {
	a := splitLines(oldContent)
	b := splitLines(newContent)

	res := Result{Path: path}

	matcher := difflib.NewMatcher(a, b)
	for _, group := range matcher.GetGroupedOpCodes(contextLines) {
		first, last := group[0], group[len(group)-1]
		h := Hunk{
			OldStart: first.I1 + 1,
			OldLines: last.I2 - first.I1,
			NewStart: first.J1 + 1,
			NewLines: last.J2 - first.J1,
		}
		for _, op := range group {
			switch op.Tag {
			case 'e':
				appendLines(&h, LineContext, a[op.I1:op.I2])
			case 'r':
				appendLines(&h, LineRemoved, a[op.I1:op.I2])
				appendLines(&h, LineAdded, b[op.J1:op.J2])
			case 'd':
				appendLines(&h, LineRemoved, a[op.I1:op.I2])
			case 'i':
				appendLines(&h, LineAdded, b[op.J1:op.J2])
			}
		}
		res.Hunks = append(res.Hunks, h)
	}

	if len(res.Hunks) > 0 {
		res.Unified = render(path, res.Hunks)
	}
	return res
}

// Apply reconstructs the new content by replaying a Result's hunks against
// oldContent. It fails if the hunks do not match the given base, which
// indicates the content changed since the diff was computed.
func Apply(oldContent string, res Result) (string, error) {
	old := splitLines(oldContent)

	var out strings.Builder
	cursor := 0
	for _, h := range res.Hunks {
		start := h.OldStart - 1
		if start < cursor || start > len(old) {
			return "", fmt.Errorf("hunk at old line %d is out of range", h.OldStart)
		}
		for _, line := range old[cursor:start] {
			out.WriteString(line)
		}
		cursor = start

		for _, line := range h.Lines {
			switch line.Kind {
			case LineAdded:
				out.WriteString(line.Text)
			case LineContext, LineRemoved:
				if cursor >= len(old) || old[cursor] != line.Text {
					return "", fmt.Errorf("hunk at old line %d does not match base content", h.OldStart)
				}
				if line.Kind == LineContext {
					out.WriteString(line.Text)
				}
				cursor++
			}
		}
	}
	for _, line := range old[cursor:] {
		out.WriteString(line)
	}
	return out.String(), nil
}

func appendLines(h *Hunk, kind LineKind, texts []string) {
	for _, t := range texts {
		h.Lines = append(h.Lines, Line{Kind: kind, Text: t})
	}
}

var linePrefix = map[LineKind]string{
	LineContext: " ",
	LineAdded:   "+",
	LineRemoved: "-",
}

// render produces unified diff text for the hunks. Lines that lack a trailing
// newline get the conventional "\ No newline at end of file" marker.
func render(path string, hunks []Hunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", path)
	fmt.Fprintf(&b, "+++ %s\n", path)

	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n",
			formatRange(h.OldStart, h.OldLines),
			formatRange(h.NewStart, h.NewLines))
		for _, line := range h.Lines {
			b.WriteString(linePrefix[line.Kind])
			b.WriteString(line.Text)
			if !strings.HasSuffix(line.Text, "\n") {
				b.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// formatRange renders a unified diff range given a 1-based start line. The
// start is decremented for empty ranges, matching the classic difflib output
// (e.g. "@@ -0,0 +1,2 @@" for an insertion into an empty file).
func formatRange(start, length int) string {
	if length == 1 {
		return fmt.Sprintf("%d", start)
	}
	if length == 0 {
		start--
	}
	return fmt.Sprintf("%d,%d", start, length)
}

// splitLines splits content into lines, each keeping its trailing newline.
// Empty content yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
		if s == "" {
			break
		}
	}
	return lines
}
