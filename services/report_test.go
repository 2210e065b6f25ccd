package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"peer-eval-api/models"
)

func submitAll(t *testing.T, db *gorm.DB, roundID uint, score int, comments string) {
	t.Helper()
	var tokens []models.EvaluationToken
	if err := db.Where("eval_round_id = ?", roundID).Find(&tokens).Error; err != nil {
		t.Fatalf("failed to load tokens: %v", err)
	}
	var items []models.RubricItem
	db.Find(&items)

	for _, tok := range tokens {
		raw := make(map[uint]int, len(items))
		for _, it := range items {
			raw[it.RubricItemID] = score
		}
		if _, err := AcceptResponse(db, tok.Token, raw, comments); err != nil {
			t.Fatalf("AcceptResponse failed for token %d: %v", tok.TokenID, err)
		}
	}
}

func TestBuildRoundReport(t *testing.T) {
	db := newTestDB(t)
	round := startTestRound(t, db)
	submitAll(t, db, round.EvalRoundID, 5, "Shows real leadership. Sometimes late to standups.")

	report, err := BuildRoundReport(context.Background(), db, round.EvalRoundID, MethodMean, 0, nil)
	if err != nil {
		t.Fatalf("BuildRoundReport failed: %v", err)
	}

	if report.Round.Name != "Sprint 1" || report.Round.Method != MethodMean {
		t.Errorf("round info wrong: %+v", report.Round)
	}
	if len(report.Criteria) != 2 {
		t.Errorf("got %d criteria, want 2", len(report.Criteria))
	}
	if len(report.RawRows) != 6 {
		t.Errorf("got %d raw rows, want 6", len(report.RawRows))
	}

	// Communication (weight 2, max 5) at 5/5 and Reliability (weight 1,
	// max 10) at 5/10: (2*1.0 + 1*0.5) / 3 = 83.33%.
	if len(report.Scores) != 3 {
		t.Fatalf("got %d aggregate rows, want 3", len(report.Scores))
	}
	for _, row := range report.Scores {
		if row.AvgScorePct != 83.33 {
			t.Errorf("%s: avg %v, want 83.33", row.Evaluatee, row.AvgScorePct)
		}
		if row.NEvals != 2 {
			t.Errorf("%s: n_evals %d, want 2", row.Evaluatee, row.NEvals)
		}
		// Everyone is above the protect threshold, so curving changes nothing.
		if row.CurvedScorePct != 83.33 || row.LetterGrade != "B" {
			t.Errorf("%s: curved %v grade %s, want 83.33 B", row.Evaluatee, row.CurvedScorePct, row.LetterGrade)
		}
	}

	if !almostEqual(report.CurveStats.Mean, 83.33) {
		t.Errorf("cohort mean %v, want 83.33", report.CurveStats.Mean)
	}

	if len(report.Summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(report.Summaries))
	}
	for _, s := range report.Summaries {
		if s.Summary == "" {
			t.Errorf("%s: empty summary", s.Evaluatee)
		}
		if len(s.RedFlags) != 0 {
			t.Errorf("%s: unexpected red flags %v", s.Evaluatee, s.RedFlags)
		}
	}
}

func TestBuildRoundReportFlagsSensitiveComments(t *testing.T) {
	db := newTestDB(t)
	round := startTestRound(t, db)
	submitAll(t, db, round.EvalRoundID, 3, "there was bullying on our team")

	report, err := BuildRoundReport(context.Background(), db, round.EvalRoundID, MethodMean, 0, nil)
	if err != nil {
		t.Fatalf("BuildRoundReport failed: %v", err)
	}

	for _, s := range report.Summaries {
		if len(s.RedFlags) != 1 || s.RedFlags[0] != "bully" {
			t.Errorf("%s: red flags %v, want [bully]", s.Evaluatee, s.RedFlags)
		}
	}
}

func TestBuildRoundReportUnsubmittedRows(t *testing.T) {
	db := newTestDB(t)
	round := startTestRound(t, db)

	report, err := BuildRoundReport(context.Background(), db, round.EvalRoundID, MethodMean, 0, nil)
	if err != nil {
		t.Fatalf("BuildRoundReport failed: %v", err)
	}

	if len(report.RawRows) != 6 {
		t.Fatalf("got %d raw rows, want 6", len(report.RawRows))
	}
	for _, row := range report.RawRows {
		if row.SubmittedAt != "" || len(row.Scores) != 0 {
			t.Errorf("unsubmitted row carries data: %+v", row)
		}
	}
	if len(report.Scores) != 0 {
		t.Errorf("aggregates from zero submissions: %+v", report.Scores)
	}
	if len(report.Summaries) != 0 {
		t.Errorf("summaries from zero comments: %+v", report.Summaries)
	}
}
