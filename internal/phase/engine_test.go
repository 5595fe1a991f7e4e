package phase

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/pkg/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// barSnapshot is a minimal snapshot for exercising the generic engine.
type barSnapshot struct {
	level int
}

func barText() RationaleText[barSnapshot] {
	return RationaleText[barSnapshot]{
		Header:      "Bar-based Phase",
		Indicators:  "Key bar indicators:",
		ScoresTitle: "Phase scores (bar-based):",
		Headline: func(m barSnapshot, p types.Phase) []string {
			return []string{"- level observed"}
		},
	}
}

func always(barSnapshot) bool { return true }
func never(barSnapshot) bool  { return false }

func TestDeterminePhase_ZeroSignalResolvesToTrigger(t *testing.T) {
	rules := RuleSet[barSnapshot]{
		types.PhasePeakInflatedExpectations: {{"nope", 0.5, never}},
		types.PhasePlateauProductivity:      {{"nada", 0.5, never}},
	}
	engine := NewEngine(types.StreamSocial, rules, barText(), testLogger())

	v := engine.DeterminePhase(barSnapshot{})
	assert.Equal(t, types.PhaseTechnologyTrigger, v.Phase)
	assert.Equal(t, 0.0, v.Confidence)
	assert.Len(t, v.Scores, 5)
}

func TestDeterminePhase_ScoreCappedAtOne(t *testing.T) {
	rules := RuleSet[barSnapshot]{
		types.PhaseTroughDisillusionment: {
			{"a", 0.5, always},
			{"b", 0.5, always},
			{"c", 0.5, always},
		},
	}
	engine := NewEngine(types.StreamSocial, rules, barText(), testLogger())

	v := engine.DeterminePhase(barSnapshot{})
	assert.Equal(t, types.PhaseTroughDisillusionment, v.Phase)
	assert.Equal(t, 1.0, v.Confidence)
	assert.Equal(t, 1.0, v.Scores[types.PhaseTroughDisillusionment])
}

func TestDeterminePhase_TieGoesToEarlierPhase(t *testing.T) {
	rules := RuleSet[barSnapshot]{
		types.PhasePeakInflatedExpectations: {{"a", 0.5, always}},
		types.PhaseSlopeEnlightenment:       {{"b", 0.5, always}},
	}
	engine := NewEngine(types.StreamSocial, rules, barText(), testLogger())

	v := engine.DeterminePhase(barSnapshot{})
	assert.Equal(t, types.PhasePeakInflatedExpectations, v.Phase)
	assert.Equal(t, 0.5, v.Confidence)
}

func TestDeterminePhase_StrictlyGreaterDisplaces(t *testing.T) {
	rules := RuleSet[barSnapshot]{
		types.PhasePeakInflatedExpectations: {{"a", 0.5, always}},
		types.PhaseSlopeEnlightenment:       {{"b", 0.55, always}},
	}
	engine := NewEngine(types.StreamSocial, rules, barText(), testLogger())

	v := engine.DeterminePhase(barSnapshot{})
	assert.Equal(t, types.PhaseSlopeEnlightenment, v.Phase)
}

func TestDeterminePhase_OnlyMetIndicatorsCount(t *testing.T) {
	rules := RuleSet[barSnapshot]{
		types.PhasePlateauProductivity: {
			{"met", 0.3, func(m barSnapshot) bool { return m.level > 10 }},
			{"unmet", 0.6, func(m barSnapshot) bool { return m.level > 100 }},
		},
	}
	engine := NewEngine(types.StreamSocial, rules, barText(), testLogger())

	v := engine.DeterminePhase(barSnapshot{level: 50})
	assert.Equal(t, types.PhasePlateauProductivity, v.Phase)
	assert.InDelta(t, 0.3, v.Confidence, 1e-9)
}

func TestRender_Layout(t *testing.T) {
	text := RationaleText[barSnapshot]{
		Header:      "Bar-based Phase",
		Indicators:  "Key bar indicators:",
		ScoresTitle: "Phase scores (bar-based):",
		Headline: func(m barSnapshot, p types.Phase) []string {
			return []string{"- first line", "- second line"}
		},
		ExtraTitle: "Top bars:",
		Extra: func(m barSnapshot) []string {
			return []string{"  - bar one: 7"}
		},
	}
	scores := map[types.Phase]float64{
		types.PhaseTechnologyTrigger:      0.2,
		types.PhasePeakInflatedExpectations: 0.75,
		types.PhaseTroughDisillusionment:  0.2,
		types.PhaseSlopeEnlightenment:     0.4,
		types.PhasePlateauProductivity:    0.0,
	}

	got := text.render(barSnapshot{}, types.PhasePeakInflatedExpectations, scores)

	want := strings.Join([]string{
		"Bar-based Phase: Peak of Inflated Expectations",
		"Confidence score: 0.75",
		"",
		"Key bar indicators:",
		"- first line",
		"- second line",
		"",
		"Top bars:",
		"  - bar one: 7",
		"",
		"Phase scores (bar-based):",
		"  Peak of Inflated Expectations: 0.75",
		"  Slope of Enlightenment: 0.40",
		"  Technology Trigger: 0.20",
		"  Trough of Disillusionment: 0.20",
		"  Plateau of Productivity: 0.00",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRender_NoExtraSection(t *testing.T) {
	got := barText().render(barSnapshot{}, types.PhaseTechnologyTrigger, map[types.Phase]float64{
		types.PhaseTechnologyTrigger: 0.3,
	})
	assert.NotContains(t, got, "Top bars:")
	assert.True(t, strings.HasPrefix(got, "Bar-based Phase: Technology Trigger\n"))
}

func TestSortedByScore_TieKeepsCanonicalOrder(t *testing.T) {
	scores := map[types.Phase]float64{
		types.PhaseTechnologyTrigger:      0.5,
		types.PhasePeakInflatedExpectations: 0.5,
		types.PhaseTroughDisillusionment:  0.9,
		types.PhaseSlopeEnlightenment:     0.5,
		types.PhasePlateauProductivity:    0.5,
	}
	got := sortedByScore(scores)
	require.Len(t, got, 5)
	assert.Equal(t, types.PhaseTroughDisillusionment, got[0])
	assert.Equal(t, []types.Phase{
		types.PhaseTechnologyTrigger,
		types.PhasePeakInflatedExpectations,
		types.PhaseSlopeEnlightenment,
		types.PhasePlateauProductivity,
	}, got[1:])
}

func TestYearsSincePeak(t *testing.T) {
	_, ok := yearsSincePeak(nil, 2020)
	assert.False(t, ok)

	gap, ok := yearsSincePeak(map[int]int{2018: 4, 2020: 9, 2023: 2}, 2020)
	require.True(t, ok)
	assert.Equal(t, 3, gap)
}
