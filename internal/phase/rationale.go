package phase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/techscope/hypecycle/pkg/types"
)

// RationaleText describes how an engine narrates its verdict: the
// stream-flavored headers, the phase-specific indicator lines, and an
// optional trailing section such as top patent holders.
type RationaleText[S any] struct {
	Header      string // e.g. "Patent-based Phase"
	Indicators  string // e.g. "Key patent indicators:"
	ScoresTitle string // e.g. "Phase scores (patent-based):"
	Headline    func(S, types.Phase) []string
	ExtraTitle  string           // empty when the stream has no trailer
	Extra       func(S) []string // lines under ExtraTitle
}

func (t RationaleText[S]) render(snap S, phase types.Phase, scores map[types.Phase]float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", t.Header, phase.DisplayName())
	fmt.Fprintf(&b, "Confidence score: %.2f\n\n", scores[phase])
	b.WriteString(t.Indicators + "\n")
	for _, line := range t.Headline(snap, phase) {
		b.WriteString(line + "\n")
	}

	if t.ExtraTitle != "" && t.Extra != nil {
		b.WriteString("\n" + t.ExtraTitle + "\n")
		for _, line := range t.Extra(snap) {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + t.ScoresTitle + "\n")
	for _, p := range sortedByScore(scores) {
		fmt.Fprintf(&b, "  %s: %.2f\n", p.DisplayName(), scores[p])
	}
	return strings.TrimRight(b.String(), "\n")
}

// sortedByScore orders phases score-descending, ties resolving to the
// canonical cycle order.
func sortedByScore(scores map[types.Phase]float64) []types.Phase {
	phases := make([]types.Phase, len(types.CanonicalPhaseOrder))
	copy(phases, types.CanonicalPhaseOrder)
	sort.SliceStable(phases, func(i, j int) bool {
		return scores[phases[i]] > scores[phases[j]]
	})
	return phases
}

// yearsSincePeak reports the gap between the latest bucket year and the
// peak year. Absent velocity data there is no meaningful gap.
func yearsSincePeak(velocity map[int]int, peakYear int) (int, bool) {
	if len(velocity) == 0 {
		return 0, false
	}
	latest := 0
	for y := range velocity {
		if y > latest {
			latest = y
		}
	}
	return latest - peakYear, true
}
