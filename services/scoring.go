package services

import (
	"math"
	"sort"
	"strings"

	"peer-eval-api/models"
)

// Aggregation methods accepted by AggregateScores.
const (
	MethodMean        = "mean"
	MethodMedian      = "median"
	MethodTrimmedMean = "trimmed_mean"
)

// EvalScore is one submitted evaluation reduced to a weighted percentage.
type EvalScore struct {
	Evaluatee string  `json:"evaluatee"`
	Team      string  `json:"team"`
	Evaluator string  `json:"evaluator"`
	Percent   float64 `json:"score_pct"`
}

// AggregateRow is the per-evaluatee result of aggregating many evaluations.
type AggregateRow struct {
	Evaluatee      string  `json:"evaluatee"`
	Team           string  `json:"team"`
	AvgScorePct    float64 `json:"avg_score_pct"`
	NEvals         int     `json:"n_evals"`
	CurvedScorePct float64 `json:"curved_score_pct"`
	LetterGrade    string  `json:"letter_grade"`
}

// CurveStats reports the cohort statistics used by the curve.
type CurveStats struct {
	Mean             float64 `json:"mean"`
	Std              float64 `json:"std"`
	K                float64 `json:"k"`
	ProtectThreshold float64 `json:"protect_threshold"`
}

// Curve defaults.
const (
	DefaultProtectThreshold = 80.0
	DefaultCurveK           = 0.5
)

// ComputeWeightedPercentage converts one submission's per-criterion scores
// into a percentage in [0, 100]. Every item's weight lands in the
// denominator; an item only contributes to the numerator when its max_score
// is positive. An item with max_score <= 0 therefore deflates the
// percentage — kept deliberately, pending product-owner clarification.
func ComputeWeightedPercentage(scores map[uint]int, items []models.RubricItem) float64 {
	totalWeight := 0.0
	weightedSum := 0.0
	for _, it := range items {
		totalWeight += it.Weight
		if it.MaxScore > 0 {
			val := scores[it.RubricItemID]
			if val < 0 {
				val = 0
			}
			if val > it.MaxScore {
				val = it.MaxScore
			}
			weightedSum += (float64(val) / float64(it.MaxScore)) * it.Weight
		}
	}
	if totalWeight <= 0 {
		return 0.0
	}
	return (weightedSum / totalWeight) * 100.0
}

// AggregateScores groups per-evaluation percentages by (evaluatee, team) and
// reduces each group with the selected method. Percentages are rounded to 2
// decimals and rows ordered by (team, evaluatee) ascending.
func AggregateScores(evals []EvalScore, method string, trimFraction float64) []AggregateRow {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = MethodMean
	}

	type key struct{ evaluatee, team string }
	grouped := make(map[key][]float64)
	for _, e := range evals {
		k := key{e.Evaluatee, e.Team}
		grouped[k] = append(grouped[k], e.Percent)
	}

	rows := make([]AggregateRow, 0, len(grouped))
	for k, values := range grouped {
		var agg float64
		switch method {
		case MethodMedian:
			agg = median(values)
		case MethodTrimmedMean:
			agg = trimmedMean(values, trimFraction)
		default:
			agg = mean(values)
		}
		rows = append(rows, AggregateRow{
			Evaluatee:   k.evaluatee,
			Team:        k.team,
			AvgScorePct: round2(agg),
			NEvals:      len(values),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Team != rows[j].Team {
			return rows[i].Team < rows[j].Team
		}
		return rows[i].Evaluatee < rows[j].Evaluatee
	})
	return rows
}

// ApplyCurve pulls sub-threshold percentages toward the cohort mean by
// factor k and maps the curved value to a letter grade. The mean and
// population standard deviation come from the raw values, so the curve is
// never applied iteratively. Values at or above the protect threshold are
// returned unchanged.
func ApplyCurve(rows []AggregateRow, protectThreshold, k float64) ([]AggregateRow, CurveStats) {
	stats := CurveStats{K: k, ProtectThreshold: protectThreshold}
	if len(rows) == 0 {
		return rows, stats
	}

	raw := make([]float64, len(rows))
	for i, r := range rows {
		raw[i] = r.AvgScorePct
	}
	stats.Mean = mean(raw)
	stats.Std = populationStd(raw, stats.Mean)

	out := make([]AggregateRow, len(rows))
	for i, r := range rows {
		curved := r.AvgScorePct
		if curved < protectThreshold {
			curved = round2(curved + k*(stats.Mean-curved))
		}
		r.CurvedScorePct = curved
		r.LetterGrade = ComputeLetterGrade(curved)
		out[i] = r
	}
	return out, stats
}

// ComputeLetterGrade maps a percentage to the fixed letter scale.
func ComputeLetterGrade(percent float64) string {
	switch {
	case percent >= 90.0:
		return "A"
	case percent >= 80.0:
		return "B"
	case percent >= 70.0:
		return "C"
	case percent >= 60.0:
		return "D"
	default:
		return "E"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// trimmedMean drops floor(n*f) values from each tail before averaging.
// Falls back to the plain mean when the fraction is non-positive or the trim
// would consume the whole sample.
func trimmedMean(values []float64, trimFraction float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	if trimFraction <= 0 {
		return mean(values)
	}
	k := int(float64(n) * trimFraction)
	if k <= 0 {
		return mean(values)
	}
	if 2*k >= n {
		return mean(values)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return mean(sorted[k : n-k])
}

func populationStd(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
