package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER — One-line reply for a projection
// ============================================================================

// BuildReply summarises a filtered view against the full table size.
// "Showing 1,204 of 5,000 events across 3 runs."
func BuildReply(view RecordView, total int) string {
	runs := CountRuns(view)
	noun := "runs"
	if runs == 1 {
		noun = "run"
	}
	return fmt.Sprintf("Showing %s of %s events across %d %s.",
		FormatInt(view.Len()), FormatInt(total), runs, noun)
}

// CountRuns counts the distinct (seed, strategy) pairs of a view.
func CountRuns(view RecordView) int {
	seen := make(map[[2]string]bool)
	for i := 0; i < view.Len(); i++ {
		seen[[2]string{view.Dimension(i, ColSeed), view.Dimension(i, ColStrategy)}] = true
	}
	return len(seen)
}
