package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"peer-eval-api/config"
	"peer-eval-api/models"
)

// SendOrQueue delivers one message over SMTP when configured, and otherwise
// (or when the send fails) records it in the dev outbox. A transport failure
// therefore never aborts the operation that triggered the notification.
func SendOrQueue(db *gorm.DB, toAddr, subject, body string, roundID *uint) error {
	if config.MailConfigured() {
		err := config.SendMail([]string{toAddr}, subject, body)
		if err == nil {
			return nil
		}
		log.Printf("smtp send to %s failed, queuing to outbox: %v", toAddr, err)
	}

	out := models.DevOutbox{
		CreatedAt:   time.Now().UTC(),
		ToAddr:      toAddr,
		Subject:     subject,
		Body:        body,
		EvalRoundID: roundID,
	}
	return db.Create(&out).Error
}

// PublicBaseURL is the externally reachable base used in evaluation links.
func PublicBaseURL() string {
	base := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base
}

// SendRoundInvitations emails every evaluator in the round their unique
// evaluation links and stamps sent_at on the covered tokens. Dispatch is
// per-evaluator: one failure is logged and skipped, the rest proceed.
// Returns the number of evaluators notified.
func SendRoundInvitations(db *gorm.DB, round *models.EvalRound) (int, error) {
	var tokens []models.EvaluationToken
	if err := db.Preload("Evaluator").Preload("Evaluatee").
		Where("eval_round_id = ?", round.EvalRoundID).
		Find(&tokens).Error; err != nil {
		return 0, err
	}

	byEvaluator := make(map[uint][]models.EvaluationToken)
	for _, t := range tokens {
		byEvaluator[t.EvaluatorID] = append(byEvaluator[t.EvaluatorID], t)
	}

	base := PublicBaseURL()
	notified := 0
	for _, evalTokens := range byEvaluator {
		evaluator := evalTokens[0].Evaluator

		links := make([]string, 0, len(evalTokens))
		ids := make([]uint, 0, len(evalTokens))
		for _, t := range evalTokens {
			links = append(links, fmt.Sprintf("- Evaluate %s: %s/evaluate/%s", t.Evaluatee.FullName(), base, t.Token))
			ids = append(ids, t.TokenID)
		}

		body := fmt.Sprintf(`Hello %s,

You have peer evaluations to complete for round '%s'. Please complete a form for each teammate:

%s

Each link is unique to you and your teammate. Please do not share.

Thank you.
`, evaluator.FirstName, round.Name, strings.Join(links, "\n"))

		roundID := round.EvalRoundID
		if err := SendOrQueue(db, evaluator.Email, "Peer Evaluations - "+round.Name, body, &roundID); err != nil {
			log.Printf("failed to notify evaluator %s: %v", evaluator.Email, err)
			continue
		}
		if err := MarkNotified(db, ids, time.Now().UTC()); err != nil {
			log.Printf("failed to mark tokens notified for evaluator %s: %v", evaluator.Email, err)
		}
		notified++
	}
	return notified, nil
}
