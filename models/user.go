package models

import "time"

// User is an administrator account for the web API.
type User struct {
	UserID       int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email        string     `gorm:"column:email;uniqueIndex;size:255" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255" json:"-"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at,omitempty"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
