package output

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change
const DefaultContext = 3

// Line is one line of a line diff
type Line struct {
	Op   diffpatch.Operation
	Text string
}

// Hunk is a run of changed lines with their context
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// Header returns the unified diff header of the hunk. An empty range is
// numbered by the line before it.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", rangeStart(h.OldStart, h.OldLines), h.OldLines,
		rangeStart(h.NewStart, h.NewLines), h.NewLines)
}

func rangeStart(start, lines int) int {
	if lines == 0 {
		return start - 1
	}
	return start
}

// LineDiff compares two texts line by line
func LineDiff(before, after string) []Line {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []Line
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			out = append(out, Line{Op: d.Type, Text: text})
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Hunks groups the changes of a line diff, keeping context unchanged lines
// around each change. Changes closer than twice the context share a hunk.
func Hunks(lines []Line, context int) []Hunk {
	n := len(lines)
	oldNo := make([]int, n)
	newNo := make([]int, n)
	o, nw := 1, 1
	for i, l := range lines {
		oldNo[i], newNo[i] = o, nw
		switch l.Op {
		case diffpatch.DiffEqual:
			o++
			nw++
		case diffpatch.DiffDelete:
			o++
		case diffpatch.DiffInsert:
			nw++
		}
	}

	var hunks []Hunk
	for i := 0; i < n; {
		if lines[i].Op == diffpatch.DiffEqual {
			i++
			continue
		}

		start := i - context
		if start < 0 {
			start = 0
		}
		end := i
		for j := i; j < n; {
			if lines[j].Op != diffpatch.DiffEqual {
				j++
				end = j
				continue
			}
			k := j
			for k < n && lines[k].Op == diffpatch.DiffEqual {
				k++
			}
			if k == n || k-j > 2*context {
				break
			}
			j = k
		}
		stop := end + context
		if stop > n {
			stop = n
		}

		h := Hunk{OldStart: oldNo[start], NewStart: newNo[start], Lines: lines[start:stop]}
		for _, l := range h.Lines {
			switch l.Op {
			case diffpatch.DiffEqual:
				h.OldLines++
				h.NewLines++
			case diffpatch.DiffDelete:
				h.OldLines++
			case diffpatch.DiffInsert:
				h.NewLines++
			}
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}
