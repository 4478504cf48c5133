package github

import (
	"bytes"
	"fmt"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// AddedLines returns the new-side line numbers of every added line in a
// GitHub file patch (hunks only, no file headers), in ascending order.
func AddedLines(patch string) ([]int, error) {
	if patch == "" {
		return nil, nil
	}
	hunks, err := godiff.ParseHunks([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("parsing patch: %w", err)
	}

	var added []int
	for _, h := range hunks {
		line := int(h.NewStartLine)
		for _, l := range bytes.Split(h.Body, []byte("\n")) {
			if len(l) == 0 {
				continue
			}
			switch l[0] {
			case '+':
				added = append(added, line)
				line++
			case ' ':
				line++
			}
		}
	}
	return added, nil
}

// Snap returns target when it is an added line, otherwise the nearest added
// line (the earlier one on a tie). ok is false when added is empty.
func Snap(added []int, target int) (line int, ok bool) {
	if len(added) == 0 {
		return 0, false
	}
	best := added[0]
	bestDist := abs(best - target)
	for _, l := range added {
		if l == target {
			return l, true
		}
		if d := abs(l - target); d < bestDist {
			best, bestDist = l, d
		}
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
