package services

import (
	"math"
	"testing"

	"peer-eval-api/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeWeightedPercentageAllMax(t *testing.T) {
	items := []models.RubricItem{
		{RubricItemID: 1, Weight: 1.0, MaxScore: 5},
		{RubricItemID: 2, Weight: 3.5, MaxScore: 10},
		{RubricItemID: 3, Weight: 0.25, MaxScore: 3},
	}
	scores := map[uint]int{1: 5, 2: 10, 3: 3}

	if got := ComputeWeightedPercentage(scores, items); !almostEqual(got, 100.0) {
		t.Errorf("all-max scores: got %v, want 100.0", got)
	}
}

func TestComputeWeightedPercentageClampsAndDefaults(t *testing.T) {
	items := []models.RubricItem{
		{RubricItemID: 1, Weight: 1, MaxScore: 5},
		{RubricItemID: 2, Weight: 1, MaxScore: 5},
	}

	// Score above max clamps to max; missing item counts as 0.
	got := ComputeWeightedPercentage(map[uint]int{1: 99}, items)
	if !almostEqual(got, 50.0) {
		t.Errorf("got %v, want 50.0", got)
	}

	// Negative clamps to 0.
	got = ComputeWeightedPercentage(map[uint]int{1: -3, 2: 5}, items)
	if !almostEqual(got, 50.0) {
		t.Errorf("got %v, want 50.0", got)
	}
}

func TestComputeWeightedPercentageZeroMaxScoreDeflates(t *testing.T) {
	// An item with max_score <= 0 keeps its weight in the denominator but
	// never contributes to the numerator. Pinned behavior.
	items := []models.RubricItem{
		{RubricItemID: 1, Weight: 1, MaxScore: 5},
		{RubricItemID: 2, Weight: 1, MaxScore: 0},
	}
	got := ComputeWeightedPercentage(map[uint]int{1: 5, 2: 5}, items)
	if !almostEqual(got, 50.0) {
		t.Errorf("got %v, want 50.0 (zero-max item deflates)", got)
	}
}

func TestComputeWeightedPercentageNoWeight(t *testing.T) {
	if got := ComputeWeightedPercentage(map[uint]int{}, nil); !almostEqual(got, 0.0) {
		t.Errorf("empty rubric: got %v, want 0.0", got)
	}
}

func evalsFor(evaluatee, team string, percents ...float64) []EvalScore {
	out := make([]EvalScore, 0, len(percents))
	for i, p := range percents {
		out = append(out, EvalScore{
			Evaluatee: evaluatee,
			Team:      team,
			Evaluator: string(rune('A' + i)),
			Percent:   p,
		})
	}
	return out
}

func TestAggregateScoresMean(t *testing.T) {
	rows := AggregateScores(evalsFor("Ann", "T1", 60, 70, 80), MethodMean, 0)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].AvgScorePct != 70.0 || rows[0].NEvals != 3 {
		t.Errorf("got %+v, want avg 70.0 n 3", rows[0])
	}
}

func TestAggregateScoresMedian(t *testing.T) {
	rows := AggregateScores(evalsFor("Ann", "T1", 60, 80, 100), MethodMedian, 0)
	if rows[0].AvgScorePct != 80.0 {
		t.Errorf("median of [60 80 100]: got %v, want 80.0", rows[0].AvgScorePct)
	}

	rows = AggregateScores(evalsFor("Ann", "T1", 60, 80, 90, 100), MethodMedian, 0)
	if rows[0].AvgScorePct != 85.0 {
		t.Errorf("median of [60 80 90 100]: got %v, want 85.0", rows[0].AvgScorePct)
	}
}

func TestAggregateScoresTrimmedMean(t *testing.T) {
	// Trim fraction 0 equals plain mean on the same input.
	in := evalsFor("Ann", "T1", 10, 50, 60, 70, 100)
	plain := AggregateScores(in, MethodMean, 0)
	trimmedZero := AggregateScores(in, MethodTrimmedMean, 0)
	if plain[0].AvgScorePct != trimmedZero[0].AvgScorePct {
		t.Errorf("trim 0: got %v, want %v", trimmedZero[0].AvgScorePct, plain[0].AvgScorePct)
	}

	// 5 values, fraction 0.2 drops one from each tail.
	trimmed := AggregateScores(in, MethodTrimmedMean, 0.2)
	if trimmed[0].AvgScorePct != 60.0 {
		t.Errorf("trimmed: got %v, want 60.0", trimmed[0].AvgScorePct)
	}
	if trimmed[0].NEvals != 5 {
		t.Errorf("trimmed NEvals: got %d, want 5 (count is pre-trim)", trimmed[0].NEvals)
	}

	// Trim that would consume the whole sample falls back to plain mean.
	small := evalsFor("Ann", "T1", 60, 100)
	fallback := AggregateScores(small, MethodTrimmedMean, 0.5)
	if fallback[0].AvgScorePct != 80.0 {
		t.Errorf("trim fallback: got %v, want 80.0", fallback[0].AvgScorePct)
	}
}

func TestAggregateScoresOrderingAndRounding(t *testing.T) {
	evals := []EvalScore{
		{Evaluatee: "Zoe", Team: "T2", Evaluator: "A", Percent: 66.666666},
		{Evaluatee: "Ann", Team: "T2", Evaluator: "A", Percent: 50},
		{Evaluatee: "Bob", Team: "T1", Evaluator: "A", Percent: 90},
	}
	rows := AggregateScores(evals, MethodMean, 0)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	wantOrder := []string{"Bob", "Ann", "Zoe"}
	for i, name := range wantOrder {
		if rows[i].Evaluatee != name {
			t.Errorf("row %d: got %s, want %s", i, rows[i].Evaluatee, name)
		}
	}
	if rows[2].AvgScorePct != 66.67 {
		t.Errorf("rounding: got %v, want 66.67", rows[2].AvgScorePct)
	}
}

func TestApplyCurveProtectsHighScores(t *testing.T) {
	rows := []AggregateRow{
		{Evaluatee: "Ann", Team: "T1", AvgScorePct: 95.13, NEvals: 3},
		{Evaluatee: "Bob", Team: "T1", AvgScorePct: 80.0, NEvals: 3},
		{Evaluatee: "Cal", Team: "T1", AvgScorePct: 50.0, NEvals: 3},
	}
	curved, stats := ApplyCurve(rows, DefaultProtectThreshold, DefaultCurveK)

	if curved[0].CurvedScorePct != 95.13 {
		t.Errorf("protected score changed: got %v", curved[0].CurvedScorePct)
	}
	if curved[1].CurvedScorePct != 80.0 {
		t.Errorf("threshold score changed: got %v", curved[1].CurvedScorePct)
	}

	mean := (95.13 + 80.0 + 50.0) / 3
	if !almostEqual(stats.Mean, mean) {
		t.Errorf("stats mean: got %v, want %v", stats.Mean, mean)
	}

	// Underperformer is pulled strictly between raw and mean.
	if curved[2].CurvedScorePct <= 50.0 || curved[2].CurvedScorePct >= mean {
		t.Errorf("curved %v not strictly between raw 50.0 and mean %v", curved[2].CurvedScorePct, mean)
	}
	want := round2(50.0 + 0.5*(mean-50.0))
	if curved[2].CurvedScorePct != want {
		t.Errorf("curved: got %v, want %v", curved[2].CurvedScorePct, want)
	}
}

func TestApplyCurvePopulationStd(t *testing.T) {
	rows := []AggregateRow{
		{Evaluatee: "Ann", Team: "T1", AvgScorePct: 60},
		{Evaluatee: "Bob", Team: "T1", AvgScorePct: 80},
	}
	_, stats := ApplyCurve(rows, DefaultProtectThreshold, DefaultCurveK)

	// Population std (ddof=0) of [60, 80] is 10, not the sample std.
	if !almostEqual(stats.Std, 10.0) {
		t.Errorf("std: got %v, want 10.0", stats.Std)
	}
}

func TestApplyCurveEmpty(t *testing.T) {
	curved, stats := ApplyCurve(nil, DefaultProtectThreshold, DefaultCurveK)
	if len(curved) != 0 {
		t.Errorf("got %d rows, want 0", len(curved))
	}
	if stats.Mean != 0 || stats.Std != 0 {
		t.Errorf("empty cohort stats: got %+v", stats)
	}
	if stats.K != DefaultCurveK || stats.ProtectThreshold != DefaultProtectThreshold {
		t.Errorf("curve parameters not reported: %+v", stats)
	}
}

func TestComputeLetterGrade(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{100, "A"}, {90, "A"}, {89.99, "B"}, {80, "B"},
		{79.99, "C"}, {70, "C"}, {69.99, "D"}, {60, "D"},
		{59.99, "E"}, {0, "E"},
	}
	for _, tt := range tests {
		if got := ComputeLetterGrade(tt.percent); got != tt.want {
			t.Errorf("ComputeLetterGrade(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}
