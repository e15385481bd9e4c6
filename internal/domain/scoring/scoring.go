// Package scoring computes weighted KPI scores and performance categories.
//
// Everything here is a pure function of its arguments: no state is kept
// between calls, nothing blocks, and malformed input degrades to defined
// fallback values instead of errors. Callers may score batches concurrently.
package scoring

import (
	"math"

	"github.com/okian/kpieval/internal/domain/model"
)

const (
	percent         = 100.0
	neutralAchieved = 100.0
)

// Row is a validated KPI row ready for scoring.
type Row struct {
	Index       int      `json:"index"` // position of the source record
	Name        string   `json:"name"`
	Weight      float64  `json:"weight"`
	Target      float64  `json:"target"`
	HasTarget   bool     `json:"has_target"`
	Realization float64  `json:"realization"`
	Polarity    Polarity `json:"polarity"`

	// RawPolarity keeps the source text for display and export only.
	RawPolarity string `json:"raw_polarity,omitempty"`
}

// RowResult is a Row together with its derived scores.
type RowResult struct {
	Row
	AchievementPct float64 `json:"achievement_pct"`
	WeightedScore  float64 `json:"weighted_score"`
}

// BatchResult is the aggregate outcome of scoring a set of rows.
type BatchResult struct {
	Mode               Mode        `json:"mode"`
	Rows               []RowResult `json:"rows"`
	TotalWeight        float64     `json:"total_weight"`
	TotalWeightedScore float64     `json:"total_weighted_score"`
	FinalScore         float64     `json:"final_score"`
	Category           Category    `json:"category"`

	// InputCount is the number of records received, ScoredCount the number
	// that survived filtering. Excluded explains the difference.
	InputCount  int         `json:"input_count"`
	ScoredCount int         `json:"scored_count"`
	Excluded    []Exclusion `json:"excluded,omitempty"`

	// ZeroTotalWeight reports that FinalScore was forced to 0 because no
	// weight was available to normalize against.
	ZeroTotalWeight bool `json:"zero_total_weight"`

	// Overflow reports that the totals left the float64 range. Totals and
	// FinalScore are then reported as 0.
	Overflow bool `json:"overflow,omitempty"`
}

// Achiever computes the achievement percentage of a row.
type Achiever interface {
	Achievement(row Row) float64
}

// PolarityAchiever scores rows against their target in the row's polarity.
type PolarityAchiever struct{}

// Achievement implements Achiever.
func (PolarityAchiever) Achievement(row Row) float64 {
	return ComputeAchievement(row)
}

// FlatAchiever treats realization as an already computed percentage.
type FlatAchiever struct{}

// Achievement implements Achiever. A non-finite realization yields 0.
func (FlatAchiever) Achievement(row Row) float64 {
	return finiteOrZero(row.Realization)
}

// AchieverFor returns the Achiever used by mode.
func AchieverFor(mode Mode) Achiever {
	if mode == ModeFlat {
		return FlatAchiever{}
	}
	return PolarityAchiever{}
}

// ComputeAchievement returns the achievement percentage of row in polarity
// mode. A zero target, or a zero realization under negative polarity,
// yields 0 before any polarity rule is applied. A ratio that overflows
// float64 also yields 0.
func ComputeAchievement(row Row) float64 {
	return finiteOrZero(achievement(row))
}

func achievement(row Row) float64 {
	if row.Target == 0 || (row.Polarity == Negative && row.Realization == 0) {
		return 0
	}
	switch row.Polarity {
	case Positive:
		return row.Realization / row.Target * percent
	case Negative:
		return row.Target / row.Realization * percent
	default:
		return neutralAchieved
	}
}

// ComputeWeightedScore scales an achievement by the row's weight share.
// A product outside the float64 range yields 0.
func ComputeWeightedScore(row Row, achievementPct float64) float64 {
	return finiteOrZero(achievementPct * row.Weight / percent)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if finite(v) {
		return v
	}
	return 0
}

// ScoreRows scores already validated rows. Output rows follow input order.
func ScoreRows(rows []Row, mode Mode) BatchResult {
	achiever := AchieverFor(mode)
	res := BatchResult{
		Mode:        mode,
		Rows:        make([]RowResult, len(rows)),
		InputCount:  len(rows),
		ScoredCount: len(rows),
	}
	for i, row := range rows {
		achieved := achiever.Achievement(row)
		weighted := ComputeWeightedScore(row, achieved)
		res.Rows[i] = RowResult{Row: row, AchievementPct: achieved, WeightedScore: weighted}
		res.TotalWeight += row.Weight
		res.TotalWeightedScore += weighted
	}
	switch {
	case !finite(res.TotalWeight) || !finite(res.TotalWeightedScore):
		res.TotalWeight, res.TotalWeightedScore = 0, 0
		res.Overflow = true
	case res.TotalWeight > 0:
		res.FinalScore = res.TotalWeightedScore / res.TotalWeight * percent
		if !finite(res.FinalScore) {
			res.FinalScore = 0
			res.Overflow = true
		}
	default:
		res.ZeroTotalWeight = true
	}
	res.Category = Classify(res.FinalScore)
	return res
}

// ScoreBatch filters raw records and scores the survivors.
func ScoreBatch(records []model.Record, mode Mode) BatchResult {
	rows, excluded := Filter(records, mode)
	res := ScoreRows(rows, mode)
	res.InputCount = len(records)
	res.Excluded = excluded
	return res
}
