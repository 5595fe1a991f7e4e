// Package phase scores metrics snapshots against weighted per-phase rule
// tables to place a technology on the hype cycle.
package phase

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// Indicator is one weighted boolean signal contributing to a phase's
// score. Names are stable identifiers so scoring stays auditable.
type Indicator[S any] struct {
	Name   string
	Weight float64
	Met    func(S) bool
}

// RuleSet maps each phase to its ordered indicator list. Weights within
// a phase sum to at most 1.0 before capping.
type RuleSet[S any] map[types.Phase][]Indicator[S]

// Engine scores a snapshot type S against a rule set and renders a
// human-readable rationale for the winning phase.
type Engine[S any] struct {
	stream types.Stream
	rules  RuleSet[S]
	text   RationaleText[S]
	log    *logrus.Logger
}

// NewEngine builds an engine for one evidence stream.
func NewEngine[S any](stream types.Stream, rules RuleSet[S], text RationaleText[S], log *logrus.Logger) *Engine[S] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine[S]{stream: stream, rules: rules, text: text, log: log}
}

// DeterminePhase scores the snapshot against every phase and returns the
// verdict. Each phase's score is the sum of its met indicator weights,
// capped at 1.0. The winning phase is the highest scorer; on an exact
// tie the phase earlier in the canonical cycle order wins, so a
// zero-signal snapshot resolves to the technology trigger.
func (e *Engine[S]) DeterminePhase(snap S) types.Verdict {
	scores := make(map[types.Phase]float64, len(types.CanonicalPhaseOrder))
	for _, p := range types.CanonicalPhaseOrder {
		var sum float64
		for _, ind := range e.rules[p] {
			if ind.Met(snap) {
				sum += ind.Weight
			}
		}
		scores[p] = math.Min(sum, 1.0)
	}

	best := types.CanonicalPhaseOrder[0]
	for _, p := range types.CanonicalPhaseOrder[1:] {
		if scores[p] > scores[best] {
			best = p
		}
	}

	e.log.WithFields(logrus.Fields{
		"stream":     e.stream,
		"phase":      best,
		"confidence": scores[best],
	}).Info("phase determined")

	return types.Verdict{
		Phase:      best,
		Confidence: scores[best],
		Scores:     scores,
		Rationale:  e.text.render(snap, best, scores),
	}
}
