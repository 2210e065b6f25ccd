package models

import "time"

// DevOutbox stores notification messages that could not be sent over SMTP
// (unconfigured or failing transport). EvalRoundID ties queued messages to
// their round so round deletion can sweep them.
type DevOutbox struct {
	OutboxID    uint      `gorm:"primaryKey;column:outbox_id" json:"outbox_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	ToAddr      string    `gorm:"column:to_addr;size:255" json:"to_addr"`
	Subject     string    `gorm:"column:subject;size:255" json:"subject"`
	Body        string    `gorm:"column:body;type:text" json:"body"`
	EvalRoundID *uint     `gorm:"column:eval_round_id;index" json:"eval_round_id,omitempty"`
}

func (DevOutbox) TableName() string {
	return "dev_outbox"
}
