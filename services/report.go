package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"peer-eval-api/models"
)

// RoundReport is the full report payload. The shape mirrors the four tables
// an external renderer consumes: raw feedback, per-evaluatee scores,
// feedback summaries and cohort curve statistics.
type RoundReport struct {
	Round      ReportRoundInfo   `json:"round"`
	Criteria   []ReportCriterion `json:"criteria"`
	RawRows    []RawReportRow    `json:"raw_feedback"`
	Scores     []AggregateRow    `json:"scores"`
	Summaries  []FeedbackSummary `json:"summaries"`
	CurveStats CurveStats        `json:"curve_stats"`
}

type ReportRoundInfo struct {
	EvalRoundID uint      `json:"eval_round_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Method      string    `json:"method"`
}

type ReportCriterion struct {
	RubricItemID uint    `json:"rubric_item_id"`
	Criterion    string  `json:"criterion"`
	Weight       float64 `json:"weight"`
	MaxScore     int     `json:"max_score"`
}

// RawReportRow is one (evaluator, evaluatee) cell. Scores is empty until a
// response exists; SubmittedAt is empty for the same case.
type RawReportRow struct {
	Team        string          `json:"team"`
	Evaluator   string          `json:"evaluator"`
	Evaluatee   string          `json:"evaluatee"`
	SubmittedAt string          `json:"submitted_at"`
	Scores      models.ScoreMap `json:"scores"`
	Comments    string          `json:"comments"`
}

type FeedbackSummary struct {
	Evaluatee string   `json:"evaluatee"`
	Team      string   `json:"team"`
	Summary   string   `json:"summary"`
	RedFlags  []string `json:"red_flags"`
}

// BuildRoundReport assembles the report for one round: weighted percentages
// per submitted response, aggregation by the chosen method, the curve with
// default parameters, and red-flag-annotated feedback summaries.
func BuildRoundReport(ctx context.Context, db *gorm.DB, roundID uint, method string, trimFraction float64, summarizer Summarizer) (*RoundReport, error) {
	var round models.EvalRound
	if err := db.Preload("Rubric.Items").First(&round, roundID).Error; err != nil {
		return nil, err
	}

	var tokens []models.EvaluationToken
	if err := db.Preload("Evaluator").Preload("Evaluatee").Preload("Response").
		Where("eval_round_id = ?", roundID).
		Find(&tokens).Error; err != nil {
		return nil, err
	}

	items := round.Rubric.Items
	criteria := make([]ReportCriterion, 0, len(items))
	for _, it := range items {
		criteria = append(criteria, ReportCriterion{
			RubricItemID: it.RubricItemID,
			Criterion:    it.Criterion,
			Weight:       it.Weight,
			MaxScore:     it.MaxScore,
		})
	}

	rawRows := make([]RawReportRow, 0, len(tokens))
	var evals []EvalScore
	type groupKey struct{ evaluatee, team string }
	commentsByStudent := make(map[groupKey][]string)

	for _, t := range tokens {
		row := RawReportRow{
			Team:      t.Evaluatee.Team,
			Evaluator: t.Evaluator.FullName(),
			Evaluatee: t.Evaluatee.FullName(),
			Scores:    models.ScoreMap{},
		}
		if t.Response != nil {
			row.SubmittedAt = t.Response.SubmittedAt.Format(time.RFC3339)
			row.Scores = t.Response.Scores
			row.Comments = t.Response.Comments

			evals = append(evals, EvalScore{
				Evaluatee: row.Evaluatee,
				Team:      row.Team,
				Evaluator: row.Evaluator,
				Percent:   round2(ComputeWeightedPercentage(t.Response.Scores, items)),
			})
			if t.Response.Comments != "" {
				k := groupKey{row.Evaluatee, row.Team}
				commentsByStudent[k] = append(commentsByStudent[k], t.Response.Comments)
			}
		}
		rawRows = append(rawRows, row)
	}

	sort.Slice(rawRows, func(i, j int) bool {
		if rawRows[i].Team != rawRows[j].Team {
			return rawRows[i].Team < rawRows[j].Team
		}
		if rawRows[i].Evaluatee != rawRows[j].Evaluatee {
			return rawRows[i].Evaluatee < rawRows[j].Evaluatee
		}
		return rawRows[i].Evaluator < rawRows[j].Evaluator
	})

	aggregated := AggregateScores(evals, method, trimFraction)
	scores, stats := ApplyCurve(aggregated, DefaultProtectThreshold, DefaultCurveK)

	if summarizer == nil {
		summarizer = LocalSummarizer{MaxSentences: DefaultSummarySentences}
	}
	summaries := make([]FeedbackSummary, 0, len(commentsByStudent))
	for k, comments := range commentsByStudent {
		summary, err := summarizer.Summarize(ctx, comments)
		if err != nil {
			// Summarizer implementations fall back internally; this only
			// fires for a custom implementation without a fallback.
			summary = SimpleSummarize(comments, DefaultSummarySentences)
		}

		flagSet := make(map[string]struct{})
		for _, c := range comments {
			for _, f := range DetectRedFlags(c) {
				flagSet[f] = struct{}{}
			}
		}
		flags := make([]string, 0, len(flagSet))
		for f := range flagSet {
			flags = append(flags, f)
		}
		sort.Strings(flags)

		summaries = append(summaries, FeedbackSummary{
			Evaluatee: k.evaluatee,
			Team:      k.team,
			Summary:   summary,
			RedFlags:  flags,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Team != summaries[j].Team {
			return summaries[i].Team < summaries[j].Team
		}
		return summaries[i].Evaluatee < summaries[j].Evaluatee
	})

	usedMethod := method
	if usedMethod == "" {
		usedMethod = MethodMean
	}

	return &RoundReport{
		Round: ReportRoundInfo{
			EvalRoundID: round.EvalRoundID,
			Name:        round.Name,
			Status:      round.Status,
			CreatedAt:   round.CreatedAt,
			Method:      usedMethod,
		},
		Criteria:   criteria,
		RawRows:    rawRows,
		Scores:     scores,
		Summaries:  summaries,
		CurveStats: stats,
	}, nil
}
