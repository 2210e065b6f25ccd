package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScoreMap maps a rubric item id to the integer score it received. Stored
// as a JSON column so a response always carries its full score set.
type ScoreMap map[uint]int

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		m = ScoreMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ScoreMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = ScoreMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported score map column type %T", value)
	}
}

// EvaluationResponse is the immutable one-time submission tied to a token.
// The unique index on token_id is what prevents a second response even when
// two requests race past the submitted_at check.
type EvaluationResponse struct {
	ResponseID  uint      `gorm:"primaryKey;column:response_id" json:"response_id"`
	TokenID     uint      `gorm:"column:token_id;uniqueIndex" json:"token_id"`
	SubmittedAt time.Time `gorm:"column:submitted_at" json:"submitted_at"`
	Scores      ScoreMap  `gorm:"column:scores;type:json" json:"scores"`
	Comments    string    `gorm:"column:comments;type:text" json:"comments"`
}

func (EvaluationResponse) TableName() string {
	return "evaluation_responses"
}
