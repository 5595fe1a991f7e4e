package types

import "time"

// Verdict is the result of scoring a metrics snapshot against the five
// lifecycle phases. Exactly one phase is selected per invocation; Scores
// holds all five per-phase scores for transparency. Scores are not
// normalized across phases: several phases scoring high at once signals a
// transitional state, and callers must not assume they sum to one.
type Verdict struct {
	Phase      Phase             `json:"phase"`
	Confidence float64           `json:"confidence"` // Score of the winning phase, in [0,1]
	Scores     map[Phase]float64 `json:"scores"`     // All five phases -> score in [0,1]
	Rationale  string            `json:"rationale"`  // Human-readable explanation
}

// Analysis is one persisted analysis run for a technology and stream:
// the verdict together with the snapshot it was derived from and run
// bookkeeping.
type Analysis struct {
	RunID           string            `json:"run_id"` // UUID of the analysis run
	TechnologyID    int64             `json:"technology_id"`
	Stream          Stream            `json:"stream"`
	Phase           Phase             `json:"phase"`
	Confidence      float64           `json:"confidence"`
	Scores          map[Phase]float64 `json:"scores"`
	Rationale       string            `json:"rationale"`
	Snapshot        any               `json:"snapshot"` // Stream-specific *Snapshot value
	RecordsAnalyzed int               `json:"records_analyzed"`
	AnalyzedAt      time.Time         `json:"analyzed_at"`
}
